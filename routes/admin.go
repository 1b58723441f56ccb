package routes

import (
	"github.com/gin-gonic/gin"

	brandControllers "github.com/MayMartirosyan/svmotors-backend/controllers/brand"
	categoryControllers "github.com/MayMartirosyan/svmotors-backend/controllers/category"
	orderControllers "github.com/MayMartirosyan/svmotors-backend/controllers/order"
	productControllers "github.com/MayMartirosyan/svmotors-backend/controllers/product"
	requestControllers "github.com/MayMartirosyan/svmotors-backend/controllers/request"
	userControllers "github.com/MayMartirosyan/svmotors-backend/controllers/user"
	"github.com/MayMartirosyan/svmotors-backend/middleware"
)

// setupAdminRoutes registers the back-office surface behind the shared
// admin key.
func setupAdminRoutes(r *gin.Engine, deps Deps) {
	admin := r.Group("/admin", middleware.AdminAPIKey(deps.Cfg.Auth.AdminAPIKey))

	orders := admin.Group("/orders")
	{
		orders.GET("", orderControllers.ListOrders(deps.DB))
		orders.GET("/export", orderControllers.ExportOrdersToExcel(deps.DB))
		orders.GET("/ws", deps.Hub.Handler())
		orders.GET("/:number", orderControllers.GetOrderByNumber(deps.DB))
		orders.PATCH("/:number/status", orderControllers.UpdateOrderStatus(deps.DB, deps.Hub))
		orders.DELETE("/:number", orderControllers.DeleteOrder(deps.DB))
	}

	products := admin.Group("/products")
	{
		products.POST("", productControllers.CreateProduct(deps.DB, deps.Cache))
		products.GET("/export", productControllers.ExportProductsToExcel(deps.DB))
		products.PUT("/:id", productControllers.UpdateProduct(deps.DB, deps.Cache))
		products.DELETE("/:id", productControllers.DeleteProduct(deps.DB, deps.Cache))
	}

	categories := admin.Group("/categories")
	{
		categories.POST("", categoryControllers.CreateCategory(deps.DB, deps.Cache))
		categories.PUT("/:id", categoryControllers.UpdateCategory(deps.DB, deps.Cache))
		categories.DELETE("/:id", categoryControllers.DeleteCategory(deps.DB, deps.Cache))
	}

	brands := admin.Group("/brands")
	{
		brands.POST("", brandControllers.CreateBrand(deps.DB))
		brands.PUT("/:id", brandControllers.UpdateBrand(deps.DB))
		brands.DELETE("/:id", brandControllers.DeleteBrand(deps.DB))
	}

	requests := admin.Group("/requests")
	{
		requests.GET("", requestControllers.ListRequests(deps.DB))
		requests.DELETE("/:id", requestControllers.DeleteRequest(deps.DB))
	}

	users := admin.Group("/users")
	{
		users.GET("", userControllers.ListUsers(deps.DB))
		users.GET("/:id", userControllers.GetUser(deps.DB))
		users.DELETE("/:id", userControllers.DeleteUser(deps.DB))
	}
}
