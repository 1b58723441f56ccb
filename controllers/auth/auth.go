package authControllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/auth"
	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

type RegisterInput struct {
	Name         string `json:"name" binding:"required"`
	Surname      string `json:"surname"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Tel          string `json:"tel"`
	Gender       string `json:"gender"`
	BirthdayDate string `json:"birthdayDate"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/register
func Register(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			fail(c, err)
			return
		}

		user := models.User{
			Name:     input.Name,
			Surname:  input.Surname,
			Email:    input.Email,
			Password: string(hashed),
			Tel:      input.Tel,
			Gender:   input.Gender,
		}
		if input.BirthdayDate != "" {
			birthday, err := time.Parse("2006-01-02", input.BirthdayDate)
			if err != nil {
				fail(c, fmt.Errorf("%w: birthdayDate must be YYYY-MM-DD", apperr.ErrValidation))
				return
			}
			user.BirthdayDate = &birthday
		}

		if err := db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				fail(c, fmt.Errorf("%w: email already registered", apperr.ErrValidation))
				return
			}
			fail(c, err)
			return
		}

		token, err := tm.Issue(&user)
		if err != nil {
			fail(c, err)
			return
		}

		zap.L().Info("user registered", zap.Uint("user", user.ID))
		c.JSON(http.StatusCreated, gin.H{
			"token": token,
			"user":  serializer.User(&user),
		})
	}
}

// POST /auth/login
//
// When the request also carries an anonymous session token, the guest cart
// behind it is folded into the account before the response is built.
func Login(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var user models.User
		err := db.Where("email = ? AND api_token IS NULL", input.Email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
			fail(c, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthenticated))
			return
		}

		if apiToken := cartControllers.ClientToken(c); apiToken != "" {
			if err := cartControllers.MergeGuestCart(db, &user, apiToken); err != nil {
				fail(c, err)
				return
			}
		}

		token, err := tm.Issue(&user)
		if err != nil {
			fail(c, err)
			return
		}

		var fresh models.User
		if err := db.Preload("Cart", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).Preload("Cart.Product").First(&fresh, user.ID).Error; err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  serializer.User(&fresh),
			"cart":  serializer.Cart(fresh.Cart, fresh.CartSummary),
		})
	}
}

// GET /auth/me
func Me(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cartControllers.BearerToken(c)
		if token == "" {
			fail(c, fmt.Errorf("%w: missing token", apperr.ErrUnauthorized))
			return
		}
		claims, err := tm.Parse(token)
		if err != nil {
			fail(c, err)
			return
		}

		var user models.User
		err = db.Preload("Cart", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).Preload("Cart.Product").
			Preload("FavoriteProducts").
			Where("id = ? AND email = ?", claims.UserID, claims.Email).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: user not found", apperr.ErrUnauthenticated))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":      serializer.User(&user),
			"cart":      serializer.Cart(user.Cart, user.CartSummary),
			"favorites": serializer.Products(user.FavoriteProducts),
		})
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
