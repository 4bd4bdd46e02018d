package models

import (
	"time"

	"gorm.io/gorm"
)

// InvestorProfile is the reference data for one investor, including the
// target allocation percentages. The percentages are expected to sum to
// roughly 100 but nothing enforces it.
type InvestorProfile struct {
	gorm.Model
	UserID               string     `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName             string     `gorm:"not null" json:"full_name"`
	Age                  int        `json:"age"`
	City                 string     `json:"city"`
	RiskCapacity         string     `json:"risk_capacity"`
	SpendingScore        string     `json:"spending_score"`
	AnnualIncome         float64    `json:"annual_income"`
	InvestorCategory     string     `json:"investor_category"`
	AllocationModel      string     `json:"asset_allocation_model"`
	EquitiesPercent      float64    `json:"equities_percent"`
	BondsPercent         float64    `json:"bonds_percent"`
	CashPercent          float64    `json:"cash_percent"`
	AlternativesPercent  float64    `json:"alternatives_percent"`
	PreferredSectors     string     `json:"investment_preference_sectors"`
	RebalancingFrequency string     `json:"rebalancing_frequency"`
	LastRebalancedAt     *time.Time `json:"last_rebalancing_date,omitempty"`
	VariationLimit       float64    `json:"variation_limit"`
}

// AllocationModel is a named master allocation model an investor can be
// assigned to.
type AllocationModel struct {
	gorm.Model
	Category         string  `json:"category"`
	ModelNo          int     `json:"model_no"`
	ModelType        string  `gorm:"uniqueIndex;not null" json:"model_type"`
	Description      string  `json:"model_desc"`
	Equities         float64 `json:"equities"`
	DomesticEquities float64 `json:"domestic_equities"`
	EmergingMarket   float64 `json:"emerging_market"`
	Bonds            float64 `json:"bonds"`
	Cash             float64 `json:"cash_cash_equivalents"`
	Alternatives     float64 `json:"alternative_investments"`
}
