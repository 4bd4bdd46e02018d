package models

import (
	"time"

	"gorm.io/gorm"
)

// CoachingAnalysis is one stored behavioral coaching session: the life event
// and behavioral answers of an investor and the coach's output as JSON.
type CoachingAnalysis struct {
	gorm.Model
	UserID              string    `gorm:"index;not null" json:"user_id"`
	AnalyzedAt          time.Time `gorm:"index;not null" json:"analysis_date"`
	LifeEvent           string    `json:"life_event"`
	Timeline            string    `json:"timeline"`
	FinancialImpact     string    `json:"financial_impact"`
	RiskChange          string    `json:"risk_change"`
	CurrentEmotion      string    `json:"current_emotion"`
	MarketOutlook       string    `json:"market_outlook"`
	DecisionStyle       string    `json:"decision_style"`
	RecentBehavior      string    `json:"recent_behavior"`
	EventDetails        string    `json:"event_details"`
	InsightsJSON        string    `gorm:"type:text" json:"-"`
	RecommendationsJSON string    `gorm:"type:text" json:"-"`
}

// AllocationChange records a coach-driven change of an investor's target
// allocation. Allocations are stored as JSON objects keyed by asset name.
type AllocationChange struct {
	gorm.Model
	UserID          string    `gorm:"index;not null" json:"user_id"`
	ExecutedAt      time.Time `gorm:"not null" json:"execution_date"`
	Scenario        string    `gorm:"not null" json:"scenario_type"`
	LifeEvent       string    `json:"life_event"`
	OldAllocation   string    `gorm:"type:text" json:"old_allocation"`
	NewAllocation   string    `gorm:"type:text" json:"new_allocation"`
	EmotionalImpact string    `json:"emotional_impact"`
	Status          string    `gorm:"default:completed" json:"status"`
}
