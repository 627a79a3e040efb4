package models

import "time"

// Registration is a user's claimed seat at a table. A (table, user) pair has
// at most one row; leaving flips IsActive instead of deleting, so a later
// re-join reactivates the same row.
type Registration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableID   uint      `gorm:"not null;uniqueIndex:idx_table_user" json:"table_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_table_user" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
