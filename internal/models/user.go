package models

import (
	"strings"
	"time"
)

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	Username   string    `gorm:"size:100" json:"username,omitempty"`
	FirstName  string    `gorm:"size:100" json:"first_name,omitempty"`
	LastName   string    `gorm:"size:100" json:"last_name,omitempty"`
	IsMaster   bool      `gorm:"not null;default:false" json:"is_master"`
	IsAdmin    bool      `gorm:"not null;default:false" json:"is_admin"`
	Mute       bool      `gorm:"not null;default:false" json:"mute"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DisplayName is the human-facing name used in rosters and notifications:
// full name plus @username when available.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = "Player"
	}
	if u.Username != "" {
		name += " (@" + u.Username + ")"
	}
	return name
}
