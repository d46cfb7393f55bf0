package model

import "time"

// Admin is an admin added at runtime through the bot. Admins listed in the
// config are never stored here
type Admin struct {
	UserID  int64     `gorm:"primaryKey;autoIncrement:false"`
	AddedBy int64     `gorm:"not null"`
	AddedAt time.Time `gorm:"autoCreateTime"`
}
