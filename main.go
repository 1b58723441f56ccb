package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/auth"
	"github.com/MayMartirosyan/svmotors-backend/cache"
	"github.com/MayMartirosyan/svmotors-backend/config"
	orderControllers "github.com/MayMartirosyan/svmotors-backend/controllers/order"
	"github.com/MayMartirosyan/svmotors-backend/logger"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/payment"
	"github.com/MayMartirosyan/svmotors-backend/routes"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.Server.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := initDatabase(cfg)

	if err := db.AutoMigrate(
		&models.User{},
		&models.CartItem{},
		&models.Product{},
		&models.Category{},
		&models.Brand{},
		&models.Checkout{},
		&models.Order{},
		&models.Request{},
	); err != nil {
		zap.L().Fatal("auto-migrate failed", zap.Error(err))
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Token", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var gateway payment.Gateway
	if client := payment.NewClient(cfg.Payment); client.Configured() {
		gateway = client
	} else {
		zap.L().Warn("payment gateway credentials missing, card payments disabled")
	}

	routes.SetupRoutes(r, routes.Deps{
		DB:      db,
		TM:      auth.NewTokenManager(cfg.Auth.JWTSecret),
		Gateway: gateway,
		Cache:   cache.New(cfg.Redis),
		Hub:     orderControllers.NewHub(),
		Cfg:     cfg,
	})

	zap.L().Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zap.L().Fatal("server failed", zap.Error(err))
	}
}

// initDatabase opens the postgres connection. TranslateError maps driver
// duplicate-key failures to gorm.ErrDuplicatedKey, which the guest session
// resolver relies on.
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{TranslateError: true})
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}
	return db
}
