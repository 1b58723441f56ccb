package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:255;not null"`
	Slug             string `gorm:"size:255"`
	Price            float64 `gorm:"not null"`
	DiscountedPrice  *float64
	Description      string `gorm:"type:text"`
	ShortDescription string `gorm:"type:text"`
	SKU              string `gorm:"size:50"`
	Article          string `gorm:"size:50"`
	ImageURL         string `gorm:"size:512"`
	IsNew            bool   `gorm:"default:false"`
	IsRecommended    bool   `gorm:"default:false"`
	CategoryID       uint   `gorm:"not null"`
	Category         *Category
	BrandID          *uint
	Brand            *Brand
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// UnitPrice is the price a cart line is charged at: the discounted price
// when one is set, the regular price otherwise.
func (p *Product) UnitPrice() float64 {
	if p.DiscountedPrice != nil && *p.DiscountedPrice != 0 {
		return *p.DiscountedPrice
	}
	return p.Price
}
