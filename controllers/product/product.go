package productControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/cache"
	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
	"github.com/MayMartirosyan/svmotors-backend/slug"
)

// PageSize is the catalog listing page size.
const PageSize = 24

// homeCacheKey is the redis key for the aggregated home payload.
const homeCacheKey = "home"

type ProductInput struct {
	Name             string   `json:"name" binding:"required"`
	Price            float64  `json:"price" binding:"required,gt=0"`
	DiscountedPrice  *float64 `json:"discountedPrice"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	SKU              string   `json:"sku"`
	Article          string   `json:"article"`
	ImageURL         string   `json:"imageUrl"`
	IsNew            bool     `json:"isNew"`
	IsRecommended    bool     `json:"isRecommended"`
	CategoryID       uint     `json:"categoryId" binding:"required"`
	BrandID          *uint    `json:"brandId"`
}

// GET /products?page=&category=&brand=&search=&isNew=&isRecommended=
//
// category filters by category slug, search matches name, SKU and article
// case-insensitively.
func ListProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}

		base := func() *gorm.DB {
			q := db.Model(&models.Product{})
			if categorySlug := c.Query("category"); categorySlug != "" {
				q = q.Joins("JOIN categories ON categories.id = products.category_id").
					Where("categories.slug = ?", categorySlug)
			}
			if brand := c.Query("brand"); brand != "" {
				q = q.Where("products.brand_id = ?", brand)
			}
			if search := c.Query("search"); search != "" {
				like := "%" + strings.ToLower(search) + "%"
				q = q.Where(
					"LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ? OR LOWER(products.article) LIKE ?",
					like, like, like)
			}
			if c.Query("isNew") == "true" {
				q = q.Where("products.is_new = ?", true)
			}
			if c.Query("isRecommended") == "true" {
				q = q.Where("products.is_recommended = ?", true)
			}
			return q
		}

		var total int64
		if err := base().Count(&total).Error; err != nil {
			fail(c, err)
			return
		}

		var products []models.Product
		if err := base().
			Order("products.created_at DESC").
			Limit(PageSize).
			Offset((page - 1) * PageSize).
			Find(&products).Error; err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": serializer.Products(products),
			"total":    total,
			"hasMore":  int64(page*PageSize) < total,
		})
	}
}

// GET /products/:slug
// Accepts either the product slug or a numeric id.
func GetProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		param := c.Param("slug")

		var product models.Product
		query := db.Preload("Category").Preload("Brand")
		var err error
		if id, convErr := strconv.Atoi(param); convErr == nil {
			err = query.First(&product, id).Error
		} else {
			err = query.Where("slug = ?", param).First(&product).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: product not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, serializer.Product(&product))
	}
}

// GET /products/new
func ListNewProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Where("is_new = ?", true).
			Order("created_at DESC").Limit(PageSize).
			Find(&products).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": serializer.Products(products)})
	}
}

// GET /products/recommended
func ListRecommendedProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Where("is_recommended = ?", true).
			Order("created_at DESC").Limit(PageSize).
			Find(&products).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": serializer.Products(products)})
	}
}

type homePayload struct {
	Categories  []serializer.CategoryNodeResponse `json:"categories"`
	New         []serializer.ProductResponse      `json:"new"`
	Recommended []serializer.ProductResponse      `json:"recommended"`
	Brands      []serializer.BrandResponse        `json:"brands"`
}

// GET /home
//
// The aggregate the storefront landing page needs in one round trip. Served
// from redis when available; admin catalog writes invalidate the entry.
func GetHome(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload homePayload
		if store.GetJSON(c.Request.Context(), homeCacheKey, &payload) {
			c.JSON(http.StatusOK, payload)
			return
		}

		var categories []models.Category
		if err := db.Order("id ASC").Find(&categories).Error; err != nil {
			fail(c, err)
			return
		}

		var newest, recommended []models.Product
		if err := db.Where("is_new = ?", true).
			Order("created_at DESC").Limit(8).Find(&newest).Error; err != nil {
			fail(c, err)
			return
		}
		if err := db.Where("is_recommended = ?", true).
			Order("created_at DESC").Limit(8).Find(&recommended).Error; err != nil {
			fail(c, err)
			return
		}

		var brands []models.Brand
		if err := db.Order("name ASC").Find(&brands).Error; err != nil {
			fail(c, err)
			return
		}

		payload = homePayload{
			Categories:  serializer.CategoryTree(models.BuildCategoryTree(categories)),
			New:         serializer.Products(newest),
			Recommended: serializer.Products(recommended),
			Brands:      serializer.Brands(brands),
		}
		store.SetJSON(c.Request.Context(), homeCacheKey, payload)
		c.JSON(http.StatusOK, payload)
	}
}

// POST /products
func CreateProduct(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var category models.Category
		if err := db.First(&category, input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, fmt.Errorf("%w: category not found", apperr.ErrValidation))
				return
			}
			fail(c, err)
			return
		}

		product := models.Product{
			Name:             input.Name,
			Slug:             slug.Make(input.Name),
			Price:            input.Price,
			DiscountedPrice:  input.DiscountedPrice,
			Description:      input.Description,
			ShortDescription: input.ShortDescription,
			SKU:              input.SKU,
			Article:          input.Article,
			ImageURL:         input.ImageURL,
			IsNew:            input.IsNew,
			IsRecommended:    input.IsRecommended,
			CategoryID:       input.CategoryID,
			BrandID:          input.BrandID,
		}
		if err := db.Create(&product).Error; err != nil {
			fail(c, err)
			return
		}

		store.Invalidate(c.Request.Context(), homeCacheKey)
		zap.L().Info("product created", zap.Uint("product", product.ID), zap.String("slug", product.Slug))
		c.JSON(http.StatusCreated, serializer.Product(&product))
	}
}

// PUT /products/:id
func UpdateProduct(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		err := db.First(&product, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: product not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product.Name = input.Name
		product.Slug = slug.Make(input.Name)
		product.Price = input.Price
		product.DiscountedPrice = input.DiscountedPrice
		product.Description = input.Description
		product.ShortDescription = input.ShortDescription
		product.SKU = input.SKU
		product.Article = input.Article
		product.ImageURL = input.ImageURL
		product.IsNew = input.IsNew
		product.IsRecommended = input.IsRecommended
		product.CategoryID = input.CategoryID
		product.BrandID = input.BrandID

		if err := db.Save(&product).Error; err != nil {
			fail(c, err)
			return
		}

		store.Invalidate(c.Request.Context(), homeCacheKey)
		c.JSON(http.StatusOK, serializer.Product(&product))
	}
}

// DELETE /products/:id
//
// Products are soft-deleted so lines in past checkouts keep resolving to
// their snapshot data.
func DeleteProduct(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		err := db.First(&product, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: product not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			// drop live cart lines pointing at the product; frozen checkout
			// lines stay and resolve through the soft-deleted row
			var affected []uint
			if err := tx.Model(&models.CartItem{}).
				Where("product_id = ?", product.ID).
				Distinct().
				Pluck("user_id", &affected).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			for _, userID := range affected {
				if err := cartControllers.RecalcCartSummary(tx, &models.User{ID: userID}); err != nil {
					return err
				}
			}
			return tx.Delete(&product).Error
		})
		if err != nil {
			fail(c, err)
			return
		}

		store.Invalidate(c.Request.Context(), homeCacheKey)
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
