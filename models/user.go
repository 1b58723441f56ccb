package models

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:255;not null"`
	Surname      string  `gorm:"size:255"`
	Email        string  `gorm:"size:255;uniqueIndex;not null"`
	Password     string  `gorm:"size:255"` // bcrypt hash, empty for guests
	Tel          string  `gorm:"size:20"`
	Gender       string  `gorm:"size:10"`
	BirthdayDate *time.Time
	CartSummary  float64 `gorm:"not null;default:0"`
	// APIToken identifies an anonymous shopping session. The unique index
	// makes concurrent guest creation for the same token fail fast so the
	// resolver can retry with a lookup.
	APIToken         *string    `gorm:"size:255;uniqueIndex"`
	Cart             []CartItem `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	FavoriteProducts []Product  `gorm:"many2many:user_favorite_products"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsGuest reports whether the record is an anonymous session user.
func (u *User) IsGuest() bool {
	return u.APIToken != nil && u.Password == ""
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_cart_user_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Qty       int  `gorm:"not null"`
	Product   *Product
	CreatedAt time.Time
}
