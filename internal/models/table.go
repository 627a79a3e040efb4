package models

import "time"

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MasterID    uint      `gorm:"not null;index" json:"master_id"`
	Master      User      `gorm:"foreignKey:MasterID" json:"-"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	Game        string    `gorm:"size:255;not null" json:"game"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	MaxPlayers  int       `gorm:"not null" json:"max_players"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Image       string    `gorm:"size:500" json:"image,omitempty"`
	NumSessions *int      `json:"num_sessions,omitempty"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	TableTypeOneShot  = "one_shot"
	TableTypeCampaign = "campaign"
)
