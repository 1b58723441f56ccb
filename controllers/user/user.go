package userControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/apperr"
	"github.com/MayMartirosyan/svmotors-backend/auth"
	cartControllers "github.com/MayMartirosyan/svmotors-backend/controllers/cart"
	"github.com/MayMartirosyan/svmotors-backend/models"
	"github.com/MayMartirosyan/svmotors-backend/serializer"
)

type UpdateProfileInput struct {
	Name         *string `json:"name"`
	Surname      *string `json:"surname"`
	Tel          *string `json:"tel"`
	Gender       *string `json:"gender"`
	BirthdayDate *string `json:"birthdayDate"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func currentUser(c *gin.Context, db *gorm.DB, tm *auth.TokenManager) (*models.User, error) {
	token := cartControllers.BearerToken(c)
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", apperr.ErrUnauthorized)
	}
	claims, err := tm.Parse(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = db.Where("id = ? AND email = ?", claims.UserID, claims.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", apperr.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PATCH /user/profile
// Only the fields present in the body change; the rest keep their values.
func UpdateProfile(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := currentUser(c, db, tm)
		if err != nil {
			fail(c, err)
			return
		}

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			if *input.Name == "" {
				fail(c, fmt.Errorf("%w: name cannot be empty", apperr.ErrValidation))
				return
			}
			updates["name"] = *input.Name
		}
		if input.Surname != nil {
			updates["surname"] = *input.Surname
		}
		if input.Tel != nil {
			updates["tel"] = *input.Tel
		}
		if input.Gender != nil {
			updates["gender"] = *input.Gender
		}
		if input.BirthdayDate != nil {
			if *input.BirthdayDate == "" {
				updates["birthday_date"] = nil
			} else {
				birthday, err := time.Parse("2006-01-02", *input.BirthdayDate)
				if err != nil {
					fail(c, fmt.Errorf("%w: birthdayDate must be YYYY-MM-DD", apperr.ErrValidation))
					return
				}
				updates["birthday_date"] = birthday
			}
		}

		if len(updates) > 0 {
			if err := db.Model(user).Updates(updates).Error; err != nil {
				fail(c, err)
				return
			}
		}

		var fresh models.User
		if err := db.First(&fresh, user.ID).Error; err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, serializer.User(&fresh))
	}
}

// POST /user/change-password
func ChangePassword(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := currentUser(c, db, tm)
		if err != nil {
			fail(c, err)
			return
		}

		var input ChangePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)) != nil {
			fail(c, fmt.Errorf("%w: current password is incorrect", apperr.ErrUnauthenticated))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			fail(c, err)
			return
		}
		if err := db.Model(user).Update("password", string(hashed)).Error; err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}

// GET /user/favorites
func ListFavorites(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := currentUser(c, db, tm)
		if err != nil {
			fail(c, err)
			return
		}

		var favorites []models.Product
		if err := db.Model(user).Association("FavoriteProducts").Find(&favorites); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorites": serializer.Products(favorites)})
	}
}

// POST /user/favorites/:productID
// Adding an already-favorite product is a no-op.
func AddFavorite(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := currentUser(c, db, tm)
		if err != nil {
			fail(c, err)
			return
		}

		productID, err := strconv.Atoi(c.Param("productID"))
		if err != nil {
			fail(c, fmt.Errorf("%w: invalid product id", apperr.ErrValidation))
			return
		}

		var product models.Product
		err = db.First(&product, productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: product not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		if err := db.Model(user).Association("FavoriteProducts").Append(&product); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Added to favorites"})
	}
}

// DELETE /user/favorites/:productID
func RemoveFavorite(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := currentUser(c, db, tm)
		if err != nil {
			fail(c, err)
			return
		}

		productID, err := strconv.Atoi(c.Param("productID"))
		if err != nil {
			fail(c, fmt.Errorf("%w: invalid product id", apperr.ErrValidation))
			return
		}

		if err := db.Model(user).Association("FavoriteProducts").
			Delete(&models.Product{ID: uint(productID)}); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
	}
}

// GET /users
// Admin listing of registered accounts; anonymous sessions are excluded.
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Where("api_token IS NULL").Order("created_at DESC").Find(&users).Error; err != nil {
			fail(c, err)
			return
		}

		out := make([]serializer.UserResponse, 0, len(users))
		for i := range users {
			out = append(out, serializer.User(&users[i]))
		}
		c.JSON(http.StatusOK, gin.H{"users": out})
	}
}

// GET /users/:id
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		err := db.Preload("Cart").Preload("Cart.Product").First(&user, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: user not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user": serializer.User(&user),
			"cart": serializer.Cart(user.Cart, user.CartSummary),
		})
	}
}

// DELETE /users/:id
func DeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		err := db.First(&user, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, fmt.Errorf("%w: user not found", apperr.ErrNotFound))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&user).Association("FavoriteProducts").Clear(); err != nil {
				return err
			}
			// detach order history so the checkouts' user FK does not block
			// the delete; checkouts themselves are kept as records
			if err := tx.Model(&models.Checkout{}).Where("user_id = ?", user.ID).
				Update("user_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&user).Error
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
