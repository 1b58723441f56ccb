package checkoutControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	orderControllers "github.com/MayMartirosyan/svmotors-backend/controllers/order"
	"github.com/MayMartirosyan/svmotors-backend/metrics"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/payment"
)

// POST /checkout/payment-callback
//
// Reconciles asynchronous gateway notifications with order state. The
// handler is idempotent: a replayed notification finds the order already
// approved (or already gone) and does nothing. Unknown orders are
// acknowledged with 200 so the gateway stops retrying.
func PaymentWebhookHandler(db *gorm.DB, gw payment.Gateway, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var note payment.Notification
		if err := c.ShouldBindJSON(&note); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
			return
		}

		orderNumber := note.Object.Metadata["orderNumber"]
		if orderNumber == "" {
			zap.L().Warn("payment webhook without order correlation", zap.String("event", note.Event))
			metrics.WebhooksProcessedTotal.WithLabelValues("ignored").Inc()
			c.JSON(http.StatusOK, gin.H{"message": "ignored"})
			return
		}

		var order models.Order
		err := db.Preload("Checkout").Where("number = ?", orderNumber).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Info("payment webhook for unknown order", zap.String("order", orderNumber))
			metrics.WebhooksProcessedTotal.WithLabelValues("unknown_order").Inc()
			c.JSON(http.StatusOK, gin.H{"message": "order not found, ignored"})
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		// Prefer the gateway's own answer over the pushed body; a forged or
		// stale notification then has no effect.
		status, paid := note.Object.Status, note.Object.Paid
		if gw != nil && note.Object.ID != "" {
			if verified, err := gw.GetPayment(c.Request.Context(), note.Object.ID); err == nil {
				status, paid = verified.Status, verified.Paid
			} else {
				zap.L().Warn("payment verification failed, using pushed payload",
					zap.String("payment", note.Object.ID), zap.Error(err))
			}
		}

		switch {
		case status == payment.StatusSucceeded && paid:
			if order.Status != models.OrderStatusPending {
				metrics.WebhooksProcessedTotal.WithLabelValues("replay").Inc()
				break
			}
			if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
				Update("status", models.OrderStatusApproved).Error; err != nil {
				fail(c, err)
				return
			}
			if err := clearCheckoutCart(db, order.Checkout); err != nil {
				fail(c, err)
				return
			}
			order.Status = models.OrderStatusApproved
			hub.BroadcastOrder(&order)
			metrics.WebhooksProcessedTotal.WithLabelValues("approved").Inc()
			zap.L().Info("order approved by payment webhook", zap.String("order", order.Number))

		case status == payment.StatusCanceled:
			if err := orderControllers.DeleteOrderCascade(db, &order); err != nil {
				fail(c, err)
				return
			}
			metrics.WebhooksProcessedTotal.WithLabelValues("canceled").Inc()
			zap.L().Info("order removed after payment cancellation", zap.String("order", order.Number))

		default:
			metrics.WebhooksProcessedTotal.WithLabelValues("noop").Inc()
			zap.L().Info("payment webhook no-op",
				zap.String("event", note.Event),
				zap.String("status", status),
				zap.String("order", order.Number))
		}

		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
}

// clearCheckoutCart empties the cart behind a paid checkout: the linked
// user's for authenticated checkouts, or the guest session's identified by
// the retained token. A guest already deleted at checkout time is a no-op.
func clearCheckoutCart(db *gorm.DB, checkout *models.Checkout) error {
	if checkout == nil {
		return nil
	}

	if checkout.UserID != nil {
		var user models.User
		if err := db.First(&user, *checkout.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := db.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return cartControllers.RecalcCartSummary(db, &user)
	}

	if checkout.GuestToken != "" {
		var guest models.User
		err := db.Where("api_token = ?", checkout.GuestToken).First(&guest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := db.Where("user_id = ?", guest.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return cartControllers.RecalcCartSummary(db, &guest)
	}

	return nil
}
