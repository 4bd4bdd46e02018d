package models

import "gorm.io/gorm"

// ChatMessage is one turn of an advisor conversation.
type ChatMessage struct {
	gorm.Model
	UserID    string `gorm:"index;not null" json:"user_id"`
	Role      string `gorm:"not null" json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	AgentType string `json:"agent_type"`
}
