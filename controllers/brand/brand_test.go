package brandControllers

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
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Brand{}, &models.Product{}, &models.Category{}))
	return db
}

func newBrandRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/brands", ListBrands(db))
	r.POST("/brands", CreateBrand(db))
	r.PUT("/brands/:id", UpdateBrand(db))
	r.DELETE("/brands/:id", DeleteBrand(db))
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

func TestBrandCRUD(t *testing.T) {
	db := setupDB(t)
	r := newBrandRouter(db)

	w := doJSON(t, r, http.MethodPost, "/brands", gin.H{"name": "Castrol"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/brands/%d", created.ID), gin.H{"name": "Castrol EDGE"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Castrol EDGE")

	w = doJSON(t, r, http.MethodGet, "/brands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Castrol EDGE")

	w = doJSON(t, r, http.MethodPut, "/brands/9999", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBrandDetachesProducts(t *testing.T) {
	db := setupDB(t)
	r := newBrandRouter(db)

	brand := models.Brand{Name: "Castrol"}
	require.NoError(t, db.Create(&brand).Error)
	product := models.Product{Name: "Magnatec", Price: 100, CategoryID: 1, BrandID: &brand.ID}
	require.NoError(t, db.Create(&product).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/brands/%d", brand.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Nil(t, reloaded.BrandID)

	var brands int64
	db.Model(&models.Brand{}).Count(&brands)
	assert.Zero(t, brands)
}
