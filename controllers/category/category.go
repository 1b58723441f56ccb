package categoryControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/cache"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
	"github.com/MayMartirosyan/svmotors-backend/slug"
)

const homeCacheKey = "home"

type CategoryInput struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"imageUrl"`
	ParentID *uint  `json:"parentId"`
}

// GET /categories
// Returns the full category tree assembled from the flat parent_id rows.
func ListCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Order("id ASC").Find(&categories).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categories": serializer.CategoryTree(models.BuildCategoryTree(categories)),
		})
	}
}

// POST /categories
func CreateCategory(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if input.ParentID != nil {
			var parent models.Category
			if err := db.First(&parent, *input.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					fail(c, fmt.Errorf("%w: parent category not found", apperr.ErrValidation))
					return
				}
				fail(c, err)
				return
			}
		}

		category := models.Category{
			Name:     input.Name,
			Slug:     slug.Make(input.Name),
			ImageURL: input.ImageURL,
			ParentID: input.ParentID,
		}
		if err := db.Create(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				fail(c, fmt.Errorf("%w: category slug already exists", apperr.ErrValidation))
				return
			}
			fail(c, err)
			return
		}

		store.Invalidate(c.Request.Context(), homeCacheKey)
		c.JSON(http.StatusCreated, gin.H{
			"id":       category.ID,
			"name":     category.Name,
			"slug":     category.Slug,
			"imageUrl": category.ImageURL,
			"parentId": category.ParentID,
		})
	}
}

// PUT /categories/:id
func UpdateCategory(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		err := db.First(&category, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: category not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if input.ParentID != nil && *input.ParentID == category.ID {
			fail(c, fmt.Errorf("%w: category cannot be its own parent", apperr.ErrValidation))
			return
		}

		category.Name = input.Name
		category.Slug = slug.Make(input.Name)
		category.ImageURL = input.ImageURL
		category.ParentID = input.ParentID
		if err := db.Save(&category).Error; err != nil {
			fail(c, err)
			return
		}

		store.Invalidate(c.Request.Context(), homeCacheKey)
		c.JSON(http.StatusOK, gin.H{
			"id":       category.ID,
			"name":     category.Name,
			"slug":     category.Slug,
			"imageUrl": category.ImageURL,
			"parentId": category.ParentID,
		})
	}
}

// DELETE /categories/:id
// Refused while products or child categories still reference the category.
func DeleteCategory(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		err := db.First(&category, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: category not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		var products int64
		if err := db.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&products).Error; err != nil {
			fail(c, err)
			return
		}
		if products > 0 {
			fail(c, fmt.Errorf("%w: category still has products", apperr.ErrInvalidOperation))
			return
		}

		var children int64
		if err := db.Model(&models.Category{}).Where("parent_id = ?", category.ID).Count(&children).Error; err != nil {
			fail(c, err)
			return
		}
		if children > 0 {
			fail(c, fmt.Errorf("%w: category still has subcategories", apperr.ErrInvalidOperation))
			return
		}

		if err := db.Delete(&category).Error; err != nil {
			fail(c, err)
			return
		}
		store.Invalidate(c.Request.Context(), homeCacheKey)
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
