package orderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/auth"
	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

// PageSize is the fixed admin listing page size.
const PageSize = 24

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// GET /orders?page=&search=
// Search matches the order number or the checkout contact name,
// case-insensitive.
func ListOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		search := c.Query("search")

		base := func() *gorm.DB {
			q := db.Model(&models.Order{}).
				Joins("JOIN checkouts ON checkouts.id = orders.checkout_id")
			if search != "" {
				like := "%" + strings.ToLower(search) + "%"
				q = q.Where("LOWER(orders.number) LIKE ? OR LOWER(checkouts.name) LIKE ?", like, like)
			}
			return q
		}

		var total int64
		if err := base().Count(&total).Error; err != nil {
			fail(c, err)
			return
		}

		var orders []models.Order
		if err := base().
			Preload("Checkout").
			Preload("Checkout.User").
			Order("orders.created_at DESC").
			Limit(PageSize).
			Offset((page - 1) * PageSize).
			Find(&orders).Error; err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders":  serializer.Orders(orders),
			"total":   total,
			"hasMore": int64(page*PageSize) < total,
		})
	}
}

// GET /orders/:number
func GetOrderByNumber(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		err := db.Preload("Checkout").Preload("Checkout.User").
			Where("number = ?", c.Param("number")).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, fmt.Errorf("%w: order not found", apperr.ErrNotFound))
				return
			}
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, enrichOrder(db, &order))
	}
}

// GET /user-orders
// Orders whose checkout belongs to the authenticated user, newest first.
func GetUserOrders(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cartControllers.BearerToken(c)
		if token == "" {
			fail(c, fmt.Errorf("%w: missing token", apperr.ErrUnauthorized))
			return
		}
		claims, err := tm.Parse(token)
		if err != nil {
			fail(c, err)
			return
		}

		var orders []models.Order
		if err := db.
			Joins("JOIN checkouts ON checkouts.id = orders.checkout_id").
			Where("checkouts.user_id = ?", claims.UserID).
			Preload("Checkout").
			Order("orders.created_at DESC").
			Find(&orders).Error; err != nil {
			fail(c, err)
			return
		}

		enriched := make([]serializer.EnrichedOrderResponse, 0, len(orders))
		for i := range orders {
			enriched = append(enriched, enrichOrder(db, &orders[i]))
		}
		c.JSON(http.StatusOK, gin.H{"orders": enriched})
	}
}

// PATCH /orders/:number/status
//
// Manual transitions are one-shot from pending and forbidden for card-paid
// orders, whose status only ever moves through the payment webhook.
func UpdateOrderStatus(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if !models.ValidOrderStatus(input.Status) {
			fail(c, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, input.Status))
			return
		}
		status := models.OrderStatus(input.Status)
		if status != models.OrderStatusApproved && status != models.OrderStatusRejected {
			fail(c, fmt.Errorf("%w: status must be approved or rejected", apperr.ErrValidation))
			return
		}

		var order models.Order
		err := db.Preload("Checkout").Where("number = ?", c.Param("number")).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, fmt.Errorf("%w: order not found", apperr.ErrNotFound))
				return
			}
			fail(c, err)
			return
		}

		if order.Checkout != nil && order.Checkout.PaymentMethod == models.PaymentMethodBankCard {
			fail(c, fmt.Errorf("%w: cannot change status for card payments", apperr.ErrInvalidOperation))
			return
		}
		if order.Status != models.OrderStatusPending {
			fail(c, fmt.Errorf("%w: can only change status from pending", apperr.ErrInvalidOperation))
			return
		}

		order.Status = status
		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", status).Error; err != nil {
			fail(c, err)
			return
		}

		hub.BroadcastOrder(&order)
		c.JSON(http.StatusOK, serializer.Order(&order))
	}
}

// DELETE /orders/:number
func DeleteOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		err := db.Where("number = ?", c.Param("number")).First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, fmt.Errorf("%w: order not found", apperr.ErrNotFound))
				return
			}
			fail(c, err)
			return
		}

		if err := DeleteOrderCascade(db, &order); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

// DeleteOrderCascade removes an order and, when it was the last order
// referencing its checkout, the now-orphaned checkout as well. The same
// rule applies to admin deletion and webhook cancellation.
func DeleteOrderCascade(db *gorm.DB, order *models.Order) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Order{}, order.ID).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.Order{}).
			Where("checkout_id = ?", order.CheckoutID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Delete(&models.Checkout{}, order.CheckoutID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// enrichOrder joins the frozen checkout lines with live product snapshots.
// The frozen total is left untouched; only the display data is current.
func enrichOrder(db *gorm.DB, order *models.Order) serializer.EnrichedOrderResponse {
	resp := serializer.EnrichedOrderResponse{OrderResponse: serializer.Order(order)}
	if order.Checkout == nil {
		resp.Items = []serializer.EnrichedItemResponse{}
		return resp
	}

	items := make([]serializer.EnrichedItemResponse, 0, len(order.Checkout.Items))
	for _, line := range order.Checkout.Items {
		enriched := serializer.EnrichedItemResponse{
			ProductID: line.ProductID,
			Qty:       line.Qty,
		}

		var product models.Product
		err := db.Unscoped().First(&product, line.ProductID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			enriched.ProductState = serializer.ProductMissing
		case err != nil:
			enriched.ProductState = serializer.ProductMissing
		case product.DeletedAt.Valid:
			enriched.ProductState = serializer.ProductDeleted
		default:
			enriched.ProductState = serializer.ProductPresent
			enriched.Product = serializer.Product(&product)
		}
		items = append(items, enriched)
	}
	resp.Items = items
	return resp
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
