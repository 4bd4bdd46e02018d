package models

import "gorm.io/gorm"

// Fund is an instrument available for purchase.
type Fund struct {
	gorm.Model
	Symbol            string     `gorm:"uniqueIndex;not null" json:"fund_symbol"`
	Name              string     `gorm:"not null" json:"fund_name"`
	AssetClass        AssetClass `gorm:"index;not null" json:"asset_class"`
	Category          string     `json:"category"`
	Manager           string     `json:"fund_manager"`
	CurrentPrice      float64    `gorm:"not null" json:"current_price"`
	Returns1Y         float64    `gorm:"column:returns_1y" json:"returns_1year"`
	Returns3Y         float64    `gorm:"column:returns_3y" json:"returns_3year"`
	Returns5Y         float64    `gorm:"column:returns_5y" json:"returns_5year"`
	ExpenseRatio      float64    `json:"expense_ratio"`
	RiskRating        string     `json:"risk_rating"`
	PerformanceRating Rating     `json:"performance_rating"`
	MinInvestment     float64    `gorm:"default:1000" json:"min_investment"`
	Recommended       bool       `json:"is_recommended"`
	SectorFocus       string     `json:"sector_focus"`
	MarketCapFocus    string     `json:"market_cap_focus"`
}
