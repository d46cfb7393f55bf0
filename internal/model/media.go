// Package model defines database models
package model

import "time"

type Media struct {
	// Secret code, always stored uppercase
	Code    string `gorm:"primaryKey;size:32" json:"code"`
	OwnerID int64  `gorm:"index;not null" json:"owner_id"`
	// Telegram's file_id. The binary content itself never passes through us
	FileID   string    `gorm:"not null" json:"-"`
	FileType MediaKind `gorm:"not null" json:"file_type"`
	Format   string    `json:"format"`
	FileName string    `json:"file_name"`
	Caption  string    `gorm:"default:''" json:"caption"`
	Views    int64     `gorm:"not null;default:0" json:"views"`
	// Used by the expiry sweep, never changes after insertion
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Media) TableName() string {
	return "media"
}
