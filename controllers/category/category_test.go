package categoryControllers

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
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}))
	return db
}

func newCategoryRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/categories", ListCategories(db))
	r.POST("/categories", CreateCategory(db, nil))
	r.PUT("/categories/:id", UpdateCategory(db, nil))
	r.DELETE("/categories/:id", DeleteCategory(db, nil))
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

func TestCreateCategorySlugAndTree(t *testing.T) {
	db := setupDB(t)
	r := newCategoryRouter(db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Моторные масла"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var root struct {
		ID   uint   `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &root))
	assert.Equal(t, "motornye-masla", root.Slug)

	w = doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Синтетика", "parentId": root.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Categories []serializer.CategoryNodeResponse `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 1)
	require.Len(t, resp.Categories[0].Children, 1)
	assert.Equal(t, "sintetika", resp.Categories[0].Children[0].Slug)
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	db := setupDB(t)
	r := newCategoryRouter(db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Orphan", "parentId": 9999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	db := setupDB(t)
	r := newCategoryRouter(db)

	w := doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Oils"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/categories", gin.H{"name": "Oils"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	db := setupDB(t)
	r := newCategoryRouter(db)

	category := models.Category{Name: "Oils", Slug: "oils"}
	require.NoError(t, db.Create(&category).Error)

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/categories/%d", category.ID),
		gin.H{"name": "Oils", "parentId": category.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCategoryGuards(t *testing.T) {
	db := setupDB(t)
	r := newCategoryRouter(db)

	parent := models.Category{Name: "Oils", Slug: "oils"}
	require.NoError(t, db.Create(&parent).Error)
	child := models.Category{Name: "Synthetic", Slug: "synthetic", ParentID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)
	require.NoError(t, db.Create(&models.Product{Name: "Magnatec", Price: 100, CategoryID: child.ID}).Error)

	// parent blocked by child category
	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/categories/%d", parent.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// child blocked by product
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/categories/%d", child.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.NoError(t, db.Where("category_id = ?", child.ID).Delete(&models.Product{}).Error)
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/categories/%d", child.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/categories/%d", parent.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
