package model

import "time"

type User struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// Only set on the first insert
	JoinedAt   time.Time `gorm:"not null" json:"joined_at"`
	LastActive time.Time `gorm:"not null;index" json:"last_active"`
}
