package models

import "time"

type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// ChatTurn is one side of a chat exchange. Turns are append-only and are
// ordered within a resource by ID.
type ChatTurn struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ResourceID string    `json:"resource_id" gorm:"type:varchar(255);not null;index"`
	Role       Role      `json:"role" gorm:"type:varchar(16);not null"`
	Content    string    `json:"content" gorm:"type:text;not null;default:''"`
	Metadata   string    `json:"metadata" gorm:"type:text;not null;default:''"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null"`
}

func (ChatTurn) TableName() string {
	return "memory"
}
