package requestControllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

type RequestInput struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Comment string `json:"comment"`
}

// POST /requests
// Public endpoint for callback requests left on the storefront.
func CreateRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		request := models.Request{Name: input.Name, Phone: input.Phone, Comment: input.Comment}
		if err := db.Create(&request).Error; err != nil {
			fail(c, err)
			return
		}

		zap.L().Info("callback request created", zap.Uint("request", request.ID))
		c.JSON(http.StatusCreated, serializer.Request(&request))
	}
}

// GET /requests
func ListRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var requests []models.Request
		if err := db.Order("created_at DESC").Find(&requests).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": serializer.Requests(requests)})
	}
}

// DELETE /requests/:id
func DeleteRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.Request{}, c.Param("id"))
		if result.Error != nil {
			fail(c, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			fail(c, fmt.Errorf("%w: request not found", apperr.ErrNotFound))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Request deleted successfully"})
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
