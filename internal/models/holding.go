package models

import "gorm.io/gorm"

// Holding is one position of a user in a single instrument.
// CurrentValue is persisted alongside Units and CurrentPrice; every write path
// calls Reconcile so that it stays equal to Units × CurrentPrice.
type Holding struct {
	gorm.Model
	UserID            string     `gorm:"uniqueIndex:idx_user_symbol;not null" json:"user_id"`
	Symbol            string     `gorm:"uniqueIndex:idx_user_symbol;not null" json:"fund_symbol"`
	Name              string     `gorm:"not null" json:"fund_name"`
	AssetClass        AssetClass `gorm:"index;not null" json:"asset_class"`
	Units             float64    `gorm:"not null" json:"units_held"`
	CurrentPrice      float64    `gorm:"not null" json:"current_price"`
	InvestedAmount    float64    `gorm:"not null" json:"invested_amount"`
	CurrentValue      float64    `gorm:"not null" json:"current_value"`
	ReturnPercent     float64    `json:"return_percent"`
	PerformanceRating Rating     `json:"performance_rating"`
	RiskRating        string     `json:"risk_rating"`
	ExpenseRatio      float64    `json:"expense_ratio"`
	Version           int        `gorm:"not null;default:0" json:"version"`
}

// Reconcile derives CurrentValue from Units and CurrentPrice and recomputes
// ReturnPercent against InvestedAmount.
func (h *Holding) Reconcile() {
	h.CurrentValue = h.Units * h.CurrentPrice
	if h.InvestedAmount > 0 {
		h.ReturnPercent = (h.CurrentValue - h.InvestedAmount) / h.InvestedAmount * 100
	} else {
		h.ReturnPercent = 0
	}
}
