package cartControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/auth"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

type AddToCartInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Qty       int  `json:"qty" binding:"required,min=1"`
}

type UpdateCartInput struct {
	CartItemID uint `json:"cartItemId" binding:"required"`
	Qty        int  `json:"qty" binding:"required,min=1"`
}

// POST /cart
func AddToCart(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddToCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		user, err := ResolveUser(db, tm, BearerToken(c), ClientToken(c))
		if err != nil {
			fail(c, err)
			return
		}

		var product models.Product
		if err := db.First(&product, input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, fmt.Errorf("%w: product not found", apperr.ErrNotFound))
				return
			}
			fail(c, err)
			return
		}

		var item models.CartItem
		err = db.Where("user_id = ? AND product_id = ?", user.ID, product.ID).First(&item).Error
		switch {
		case err == nil:
			item.Qty += input.Qty
			err = db.Save(&item).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: user.ID, ProductID: product.ID, Qty: input.Qty}
			err = db.Create(&item).Error
		}
		if err != nil {
			fail(c, err)
			return
		}

		if err := RecalcCartSummary(db, user); err != nil {
			fail(c, err)
			return
		}
		respondCart(c, db, user)
	}
}

// PATCH /cart
func UpdateCartItem(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		user, err := ResolveUser(db, tm, BearerToken(c), ClientToken(c))
		if err != nil {
			fail(c, err)
			return
		}

		var item models.CartItem
		if err := db.Where("id = ? AND user_id = ?", input.CartItemID, user.ID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, fmt.Errorf("%w: cart item not found", apperr.ErrNotFound))
				return
			}
			fail(c, err)
			return
		}

		item.Qty = input.Qty
		if err := db.Save(&item).Error; err != nil {
			fail(c, err)
			return
		}

		if err := RecalcCartSummary(db, user); err != nil {
			fail(c, err)
			return
		}
		respondCart(c, db, user)
	}
}

// DELETE /cart/:itemID
func RemoveCartItem(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item id"})
			return
		}

		user, err := ResolveUser(db, tm, BearerToken(c), ClientToken(c))
		if err != nil {
			fail(c, err)
			return
		}

		result := db.Where("id = ? AND user_id = ?", itemID, user.ID).Delete(&models.CartItem{})
		if result.Error != nil {
			fail(c, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			fail(c, fmt.Errorf("%w: cart item not found", apperr.ErrNotFound))
			return
		}

		if err := RecalcCartSummary(db, user); err != nil {
			fail(c, err)
			return
		}
		respondCart(c, db, user)
	}
}

// GET /cart
func GetCart(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := ResolveUser(db, tm, BearerToken(c), ClientToken(c))
		if err != nil {
			fail(c, err)
			return
		}
		respondCart(c, db, user)
	}
}

// respondCart reloads the cart sorted by creation time and answers with the
// wire shape.
func respondCart(c *gin.Context, db *gorm.DB, user *models.User) {
	var items []models.CartItem
	if err := db.Preload("Product").
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Cart(items, user.CartSummary))
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
