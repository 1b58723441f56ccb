package checkoutControllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/auth"
	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	orderControllers "github.com/MayMartirosyan/svmotors-backend/controllers/order"
	"github.com/MayMartirosyan/svmotors-backend/metrics"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/payment"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

type CheckoutItemInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Qty       int  `json:"qty" binding:"required,min=1"`
}

type CreateCheckoutInput struct {
	Name          string              `json:"name" binding:"required"`
	Surname       string              `json:"surname" binding:"required"`
	Email         string              `json:"email" binding:"required,email"`
	Tel           string              `json:"tel" binding:"required"`
	DeliveryType  string              `json:"deliveryType" binding:"required,oneof=pickup replaceOil"`
	TimeFrom      string              `json:"timeFrom"`
	TimeTo        string              `json:"timeTo"`
	PaymentMethod string              `json:"paymentMethod" binding:"required,oneof=cash bankCard"`
	CartItems     []CheckoutItemInput `json:"cartItems"`
}

// POST /checkout/save
//
// Persists an immutable checkout snapshot plus a pending order, starts a
// gateway payment for bankCard submissions, and clears the acting user's
// cart. Guests are deleted entirely; their checkout keeps only the token
// as a correlation string.
func CreateCheckout(db *gorm.DB, tm *auth.TokenManager, gw payment.Gateway, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateCheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		token := cartControllers.BearerToken(c)
		apiToken := cartControllers.ClientToken(c)

		user, err := cartControllers.ResolveUser(db, tm, token, apiToken)
		if err != nil {
			fail(c, err)
			return
		}

		if len(input.CartItems) == 0 {
			fail(c, fmt.Errorf("%w: cart is empty", apperr.ErrValidation))
			return
		}

		// Frozen total: priced once against current product data. The
		// submission carries its own line list; the live cart is ignored.
		totalAmount, err := calculateTotalAmount(db, input.CartItems)
		if err != nil {
			fail(c, err)
			return
		}

		items := make(models.CheckoutItems, 0, len(input.CartItems))
		for _, item := range input.CartItems {
			items = append(items, models.CheckoutItem{ProductID: item.ProductID, Qty: item.Qty})
		}

		checkout := models.Checkout{
			Name:          input.Name,
			Surname:       input.Surname,
			Email:         input.Email,
			Tel:           input.Tel,
			DeliveryType:  input.DeliveryType,
			PaymentMethod: input.PaymentMethod,
			TotalAmount:   totalAmount,
			Items:         items,
		}
		if input.DeliveryType == models.DeliveryReplaceOil {
			// blank window fields stay NULL instead of pointing at ""
			if input.TimeFrom != "" {
				checkout.TimeFrom = &input.TimeFrom
			}
			if input.TimeTo != "" {
				checkout.TimeTo = &input.TimeTo
			}
		}
		if token != "" {
			checkout.UserID = &user.ID
		} else {
			checkout.GuestToken = apiToken
		}

		order := models.Order{
			Number:      NewOrderNumber(),
			Status:      models.OrderStatusPending,
			TotalAmount: totalAmount,
		}

		var confirmationURL string
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&checkout).Error; err != nil {
				return err
			}
			order.CheckoutID = checkout.ID
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			if input.PaymentMethod == models.PaymentMethodBankCard {
				if gw == nil {
					return fmt.Errorf("%w: payment gateway not configured", apperr.ErrExternalService)
				}
				p, err := gw.CreatePayment(c.Request.Context(), totalAmount, order.Number,
					fmt.Sprintf("Order %s", order.Number))
				if err != nil {
					return err
				}
				if p.Confirmation == nil || p.Confirmation.ConfirmationURL == "" {
					return fmt.Errorf("%w: gateway returned no confirmation URL", apperr.ErrExternalService)
				}
				confirmationURL = p.Confirmation.ConfirmationURL
				if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
					Update("payment_id", p.ID).Error; err != nil {
					return err
				}
				order.PaymentID = p.ID
			}

			if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if token == "" {
				// guest session ends at checkout
				return tx.Delete(&models.User{}, user.ID).Error
			}
			return tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("cart_summary", 0).Error
		})
		if err != nil {
			fail(c, err)
			return
		}

		metrics.OrdersCreatedTotal.Inc()
		if input.PaymentMethod == models.PaymentMethodBankCard {
			metrics.PaymentsInitiatedTotal.Inc()
		}

		order.Checkout = &checkout
		hub.BroadcastOrder(&order)
		zap.L().Info("checkout created",
			zap.String("order", order.Number),
			zap.Float64("total", totalAmount),
			zap.String("paymentMethod", input.PaymentMethod))

		resp := gin.H{
			"checkout": serializer.Checkout(&checkout),
			"order":    serializer.Order(&order),
		}
		if confirmationURL != "" {
			resp["confirmationUrl"] = confirmationURL
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// NewOrderNumber builds the human-facing order reference: a second-level
// timestamp plus a random suffix so that concurrent checkouts in the same
// second cannot collide.
func NewOrderNumber() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// calculateTotalAmount prices the submitted lines against current product
// data. Lines whose product does not resolve are skipped.
func calculateTotalAmount(db *gorm.DB, items []CheckoutItemInput) (float64, error) {
	var total float64
	for _, item := range items {
		var product models.Product
		err := db.First(&product, item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += product.UnitPrice() * float64(item.Qty)
	}
	return total, nil
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
