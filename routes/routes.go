package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/auth"
	"github.com/MayMartirosyan/svmotors-backend/cache"
	"github.com/MayMartirosyan/svmotors-backend/config"
	authControllers "github.com/MayMartirosyan/svmotors-backend/controllers/auth"
	brandControllers "github.com/MayMartirosyan/svmotors-backend/controllers/brand"
	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	categoryControllers "github.com/MayMartirosyan/svmotors-backend/controllers/category"
	checkoutControllers "github.com/MayMartirosyan/svmotors-backend/controllers/checkout"
	orderControllers "github.com/MayMartirosyan/svmotors-backend/controllers/order"
	productControllers "github.com/MayMartirosyan/svmotors-backend/controllers/product"
	requestControllers "github.com/MayMartirosyan/svmotors-backend/controllers/request"
	userControllers "github.com/MayMartirosyan/svmotors-backend/controllers/user"
	"github.com/MayMartirosyan/svmotors-backend/middleware"
	"github.com/MayMartirosyan/svmotors-backend/payment"
)

// Deps carries everything the handlers need; SetupRoutes wires them
// explicitly instead of reaching for globals.
type Deps struct {
	DB      *gorm.DB
	TM      *auth.TokenManager
	Gateway payment.Gateway
	Cache   *cache.Cache
	Hub     *orderControllers.Hub
	Cfg     *config.Config
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	setupPublicRoutes(r, deps)
	setupAdminRoutes(r, deps)
}

func setupPublicRoutes(r *gin.Engine, deps Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authControllers.Register(deps.DB, deps.TM))
		authGroup.POST("/login", authControllers.Login(deps.DB, deps.TM))
		authGroup.GET("/me", authControllers.Me(deps.DB, deps.TM))
	}

	cart := r.Group("/cart")
	{
		cart.GET("", cartControllers.GetCart(deps.DB, deps.TM))
		cart.POST("", cartControllers.AddToCart(deps.DB, deps.TM))
		cart.PATCH("", cartControllers.UpdateCartItem(deps.DB, deps.TM))
		cart.DELETE("/:itemID", cartControllers.RemoveCartItem(deps.DB, deps.TM))
	}

	r.GET("/home", productControllers.GetHome(deps.DB, deps.Cache))
	r.GET("/products", productControllers.ListProducts(deps.DB))
	r.GET("/products/new", productControllers.ListNewProducts(deps.DB))
	r.GET("/products/recommended", productControllers.ListRecommendedProducts(deps.DB))
	r.GET("/products/:slug", productControllers.GetProduct(deps.DB))
	r.GET("/categories", categoryControllers.ListCategories(deps.DB))
	r.GET("/brands", brandControllers.ListBrands(deps.DB))
	r.POST("/requests", requestControllers.CreateRequest(deps.DB))

	checkout := r.Group("/checkout")
	{
		checkout.POST("/save", checkoutControllers.CreateCheckout(deps.DB, deps.TM, deps.Gateway, deps.Hub))
		checkout.POST("/payment-callback",
			middleware.WebhookBasicAuth(deps.Cfg.Payment.WebhookUser, deps.Cfg.Payment.WebhookPass),
			checkoutControllers.PaymentWebhookHandler(deps.DB, deps.Gateway, deps.Hub))
	}

	user := r.Group("/user", middleware.RequireAuth(deps.TM))
	{
		user.PATCH("/profile", userControllers.UpdateProfile(deps.DB, deps.TM))
		user.POST("/change-password", userControllers.ChangePassword(deps.DB, deps.TM))
		user.GET("/favorites", userControllers.ListFavorites(deps.DB, deps.TM))
		user.POST("/favorites/:productID", userControllers.AddFavorite(deps.DB, deps.TM))
		user.DELETE("/favorites/:productID", userControllers.RemoveFavorite(deps.DB, deps.TM))
	}

	r.GET("/user-orders", orderControllers.GetUserOrders(deps.DB, deps.TM))
}
