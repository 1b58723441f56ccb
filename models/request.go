package models

import "time"

// Request is a callback request left on the storefront.
type Request struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Phone     string `gorm:"size:20;not null"`
	Comment   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
