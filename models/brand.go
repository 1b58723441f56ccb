package models

import "time"

type Brand struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	ImageURL  string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
