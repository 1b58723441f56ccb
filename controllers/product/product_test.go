package productControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.CartItem{}, &models.Product{}, &models.Category{},
		&models.Brand{}, &models.Checkout{}, &models.Order{}, &models.Request{},
	))
	return db
}

func newProductRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products", ListProducts(db))
	r.GET("/products/new", ListNewProducts(db))
	r.GET("/products/recommended", ListRecommendedProducts(db))
	r.GET("/products/:slug", GetProduct(db))
	r.GET("/home", GetHome(db, nil))
	r.POST("/products", CreateProduct(db, nil))
	r.PUT("/products/:id", UpdateProduct(db, nil))
	r.DELETE("/products/:id", DeleteProduct(db, nil))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if body != nil {
		require.NoError(t, json.NewEncoder(buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.Category, models.Brand) {
	t.Helper()
	category := models.Category{Name: "Oils", Slug: "oils"}
	require.NoError(t, db.Create(&category).Error)
	brand := models.Brand{Name: "Castrol"}
	require.NoError(t, db.Create(&brand).Error)
	return category, brand
}

type listResponse struct {
	Products []serializer.ProductResponse `json:"products"`
	Total    int64                        `json:"total"`
	HasMore  bool                         `json:"hasMore"`
}

func TestCreateProductGeneratesSlug(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)
	category, _ := seedCatalog(t, db)

	w := doJSON(t, r, http.MethodPost, "/products", gin.H{
		"name":       "Моторное масло 5W-30",
		"price":      1200,
		"categoryId": category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp serializer.ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "motornoe-maslo-5w-30", resp.Slug)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)

	w := doJSON(t, r, http.MethodPost, "/products", gin.H{
		"name":       "Orphan",
		"price":      10,
		"categoryId": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProductsFilters(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)
	category, brand := seedCatalog(t, db)
	other := models.Category{Name: "Filters", Slug: "filters"}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, db.Create(&models.Product{
		Name: "Magnatec 5W-30", SKU: "CAS-123", Price: 1200,
		CategoryID: category.ID, BrandID: &brand.ID, IsRecommended: true,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "Oil filter", Article: "OF-77", Price: 300, CategoryID: other.ID, IsNew: true,
	}).Error)

	w := doJSON(t, r, http.MethodGet, "/products?category=oils", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Magnatec 5W-30", resp.Products[0].Name)

	w = doJSON(t, r, http.MethodGet, "/products?search=cas-12", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 1)

	w = doJSON(t, r, http.MethodGet, "/products?search=of-77", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 1)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/products?brand=%d", brand.ID), nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 1)

	w = doJSON(t, r, http.MethodGet, "/products?isNew=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Oil filter", resp.Products[0].Name)

	w = doJSON(t, r, http.MethodGet, "/products?isRecommended=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 1)
}

func TestListProductsPagination(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)
	category, _ := seedCatalog(t, db)

	for i := 0; i < PageSize+3; i++ {
		require.NoError(t, db.Create(&models.Product{
			Name: fmt.Sprintf("Part %02d", i), Price: 10, CategoryID: category.ID,
		}).Error)
	}

	w := doJSON(t, r, http.MethodGet, "/products", nil)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, PageSize)
	assert.True(t, resp.HasMore)

	w = doJSON(t, r, http.MethodGet, "/products?page=2", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 3)
	assert.False(t, resp.HasMore)
}

func TestGetProductBySlugAndID(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)
	category, _ := seedCatalog(t, db)

	product := models.Product{Name: "Magnatec", Slug: "magnatec", Price: 1200, CategoryID: category.ID}
	require.NoError(t, db.Create(&product).Error)

	w := doJSON(t, r, http.MethodGet, "/products/magnatec", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/products/%d", product.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/products/no-such-slug", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProductSoftDeletesAndDropsCartLines(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)
	category, _ := seedCatalog(t, db)

	product := models.Product{Name: "Magnatec", Price: 1200, CategoryID: category.ID}
	require.NoError(t, db.Create(&product).Error)
	user := models.User{Name: "Ivan", Email: "ivan@example.com", Password: "hash", CartSummary: 1200}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ProductID: product.ID, Qty: 1}).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/products/%d", product.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var visible, total int64
	db.Model(&models.Product{}).Count(&visible)
	db.Unscoped().Model(&models.Product{}).Count(&total)
	assert.Zero(t, visible)
	assert.EqualValues(t, 1, total) // soft-deleted row survives

	var items int64
	db.Model(&models.CartItem{}).Count(&items)
	assert.Zero(t, items)

	// summary follows the cart: the only line is gone, so it drops to zero
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Zero(t, reloaded.CartSummary)
}

func TestDeleteProductRecomputesAffectedSummaries(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)
	category, _ := seedCatalog(t, db)

	doomed := models.Product{Name: "Magnatec", Price: 1200, CategoryID: category.ID}
	require.NoError(t, db.Create(&doomed).Error)
	kept := models.Product{Name: "Oil filter", Price: 300, CategoryID: category.ID}
	require.NoError(t, db.Create(&kept).Error)

	mixed := models.User{Name: "Ivan", Email: "ivan@example.com", Password: "hash", CartSummary: 1500}
	require.NoError(t, db.Create(&mixed).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: mixed.ID, ProductID: doomed.ID, Qty: 1}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: mixed.ID, ProductID: kept.ID, Qty: 1}).Error)

	untouched := models.User{Name: "Petr", Email: "petr@example.com", Password: "hash", CartSummary: 300}
	require.NoError(t, db.Create(&untouched).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: untouched.ID, ProductID: kept.ID, Qty: 1}).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/products/%d", doomed.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, mixed.ID).Error)
	assert.Equal(t, float64(300), reloaded.CartSummary)

	reloaded = models.User{}
	require.NoError(t, db.First(&reloaded, untouched.ID).Error)
	assert.Equal(t, float64(300), reloaded.CartSummary)
}

func TestHomeAggregate(t *testing.T) {
	db := setupDB(t)
	r := newProductRouter(db)
	category, brand := seedCatalog(t, db)
	child := models.Category{Name: "Synthetic", Slug: "synthetic", ParentID: &category.ID}
	require.NoError(t, db.Create(&child).Error)

	require.NoError(t, db.Create(&models.Product{
		Name: "Fresh", Price: 100, CategoryID: category.ID, IsNew: true, BrandID: &brand.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "Staff pick", Price: 200, CategoryID: category.ID, IsRecommended: true,
	}).Error)

	w := doJSON(t, r, http.MethodGet, "/home", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Categories  []serializer.CategoryNodeResponse `json:"categories"`
		New         []serializer.ProductResponse      `json:"new"`
		Recommended []serializer.ProductResponse      `json:"recommended"`
		Brands      []serializer.BrandResponse        `json:"brands"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 1)
	assert.Len(t, resp.Categories[0].Children, 1)
	assert.Len(t, resp.New, 1)
	assert.Len(t, resp.Recommended, 1)
	assert.Len(t, resp.Brands, 1)
}
