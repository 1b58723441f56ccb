package models

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected:
		return true
	}
	return false
}

type Order struct {
	ID uint `gorm:"primaryKey"`
	// Number is the human-facing order reference, unique across the system.
	Number      string      `gorm:"size:64;uniqueIndex;not null"`
	Status      OrderStatus `gorm:"size:20;not null;default:'pending'"`
	TotalAmount float64     `gorm:"not null"`
	CheckoutID  uint        `gorm:"not null;index"`
	Checkout    *Checkout
	// PaymentID is the gateway payment identifier for bankCard orders.
	PaymentID string `gorm:"size:64"`
	CreatedAt time.Time
}
