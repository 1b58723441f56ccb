package cartControllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/auth"
	"github.com/MayMartirosyan/svmotors-backend/models"
)

// BearerToken extracts the session token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return header
}

// ClientToken extracts the anonymous session token supplied by the
// storefront for guests.
func ClientToken(c *gin.Context) string {
	return c.GetHeader("X-API-Token")
}

// ResolveUser maps a request identity to exactly one user with its cart
// eagerly loaded.
//
// An authenticated token wins over an anonymous one; when both are present
// the guest cart identified by the anonymous token is merged into the
// authenticated user's cart as a side effect. An anonymous token alone
// resolves to the guest user for that token, creating one on first use.
func ResolveUser(db *gorm.DB, tm *auth.TokenManager, token, apiToken string) (*models.User, error) {
	if token != "" {
		claims, err := tm.Parse(token)
		if err != nil {
			return nil, err
		}
		user, err := loadUser(db, "id = ? AND email = ?", claims.UserID, claims.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: user not found", apperr.ErrUnauthenticated)
			}
			return nil, err
		}
		if apiToken != "" {
			if err := MergeGuestCart(db, user, apiToken); err != nil {
				return nil, err
			}
			return loadUser(db, "id = ?", user.ID)
		}
		return user, nil
	}

	if apiToken != "" {
		user, err := loadUser(db, "api_token = ?", apiToken)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		guest := models.User{
			Name:     "Anonymous",
			Email:    fmt.Sprintf("anonymous+%s@example.com", strings.ReplaceAll(apiToken, "-", "")),
			APIToken: &apiToken,
		}
		if err := db.Create(&guest).Error; err != nil {
			// Lost the creation race against a concurrent request with the
			// same token; the unique index on api_token guarantees a single
			// winner, so fall back to a lookup.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return loadUser(db, "api_token = ?", apiToken)
			}
			return nil, err
		}
		guest.Cart = []models.CartItem{}
		return &guest, nil
	}

	return nil, fmt.Errorf("%w: no authentication token or api token provided", apperr.ErrUnauthorized)
}

// MergeGuestCart folds the guest cart identified by apiToken into user's
// cart, adding quantities for products the user already holds and moving
// the remaining line items. The guest record is deleted afterwards, which
// makes a retried merge a no-op.
func MergeGuestCart(db *gorm.DB, user *models.User, apiToken string) error {
	var guest models.User
	err := db.Preload("Cart").Where("api_token = ? AND id <> ?", apiToken, user.ID).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, guestItem := range guest.Cart {
			var existing models.CartItem
			err := tx.Where("user_id = ? AND product_id = ?", user.ID, guestItem.ProductID).First(&existing).Error
			switch {
			case err == nil:
				existing.Qty += guestItem.Qty
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Model(&models.CartItem{}).Where("id = ?", guestItem.ID).
					Update("user_id", user.ID).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		if err := tx.Where("user_id = ?", guest.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, guest.ID).Error; err != nil {
			return err
		}
		return RecalcCartSummary(tx, user)
	})
}

// RecalcCartSummary recomputes the denormalized cart total from current
// product prices and persists it. Lines whose product no longer resolves
// contribute nothing.
func RecalcCartSummary(db *gorm.DB, user *models.User) error {
	var items []models.CartItem
	if err := db.Preload("Product").Where("user_id = ?", user.ID).Find(&items).Error; err != nil {
		return err
	}

	var total float64
	for _, item := range items {
		if item.Product != nil {
			total += item.Product.UnitPrice() * float64(item.Qty)
		}
	}

	user.CartSummary = total
	return db.Model(&models.User{}).Where("id = ?", user.ID).Update("cart_summary", total).Error
}

func loadUser(db *gorm.DB, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := db.
		Preload("Cart", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Cart.Product").
		Where(query, args...).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
