package models

import "gorm.io/gorm"

// Execution kinds.
const (
	ExecutionScenario = "scenario"
	ExecutionCustom   = "custom"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// ExecutionLog is an append-only audit record of one executed rebalance action.
// All actions of a single request share an ExecutionID. AssetClass is the
// class of the traded instrument; RequestedClass is the scenario class the
// request was made for, if any.
type ExecutionLog struct {
	gorm.Model
	ExecutionID    string     `gorm:"index;not null" json:"execution_id"`
	UserID         string     `gorm:"index;not null" json:"user_id"`
	Kind           string     `gorm:"not null" json:"kind"`
	ScenarioID     int        `json:"scenario_id,omitempty"`
	AssetClass     AssetClass `json:"asset_class,omitempty"`
	RequestedClass AssetClass `json:"requested_class,omitempty"`
	Side           string     `gorm:"not null" json:"side"`
	Symbol         string     `gorm:"not null" json:"fund_symbol"`
	Amount         float64    `json:"amount"`
	Units          float64    `json:"units"`
	Price          float64    `json:"price"`
	Status         string     `gorm:"default:completed" json:"status"`
}
