package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	DeliveryPickup     = "pickup"
	DeliveryReplaceOil = "replaceOil"

	PaymentMethodCash     = "cash"
	PaymentMethodBankCard = "bankCard"
)

// CheckoutItem is a frozen cart line captured at submission time.
type CheckoutItem struct {
	ProductID uint `json:"productId"`
	Qty       int  `json:"qty"`
}

type CheckoutItems []CheckoutItem

func (items CheckoutItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *CheckoutItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	case nil:
		*items = nil
		return nil
	default:
		return errors.New("unsupported type for CheckoutItems")
	}
}

// Checkout is the immutable snapshot of a completed checkout submission.
// It is created once and never updated; the only way it disappears is a
// cascade when its last order is removed.
type Checkout struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	Surname       string `gorm:"size:255;not null"`
	Email         string `gorm:"size:255;not null"`
	Tel           string `gorm:"size:20;not null"`
	DeliveryType  string `gorm:"size:50;not null"`
	TimeFrom      *string `gorm:"size:10"`
	TimeTo        *string `gorm:"size:10"`
	PaymentMethod string  `gorm:"size:50;not null"`
	TotalAmount   float64 `gorm:"not null"`
	Items         CheckoutItems `gorm:"type:json;not null"`
	UserID        *uint
	User          *User
	// GuestToken correlates a guest checkout with its anonymous session;
	// the guest user record itself is deleted at checkout.
	GuestToken string `gorm:"size:255"`
	CreatedAt  time.Time
}
