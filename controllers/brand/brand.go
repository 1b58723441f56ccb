package brandControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

type BrandInput struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"imageUrl"`
}

// GET /brands
func ListBrands(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var brands []models.Brand
		if err := db.Order("name ASC").Find(&brands).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"brands": serializer.Brands(brands)})
	}
}

// POST /brands
func CreateBrand(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BrandInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		brand := models.Brand{Name: input.Name, ImageURL: input.ImageURL}
		if err := db.Create(&brand).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, serializer.Brand(&brand))
	}
}

// PUT /brands/:id
func UpdateBrand(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var brand models.Brand
		err := db.First(&brand, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: brand not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		var input BrandInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		brand.Name = input.Name
		brand.ImageURL = input.ImageURL
		if err := db.Save(&brand).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, serializer.Brand(&brand))
	}
}

// DELETE /brands/:id
// Products keep their rows; their brand reference is detached.
func DeleteBrand(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var brand models.Brand
		err := db.First(&brand, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: brand not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Product{}).Where("brand_id = ?", brand.ID).
				Update("brand_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&brand).Error
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Brand deleted successfully"})
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
