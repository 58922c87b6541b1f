package api

import (
	"net/http" // HTTP status codes

	"fleet_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // For zero-balance wallet creation
	"github.com/sirupsen/logrus"    // Logging library
	"golang.org/x/crypto/bcrypt"    // Password hashing
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateRiderRequest provisions a rider account
type CreateRiderRequest struct {
	Name   string `json:"name" binding:"required"`   // Display name must be provided
	Mobile string `json:"mobile" binding:"required"` // Unique mobile must be provided
}

// CreateRiderHandler creates a rider and their zero-balance wallet in one
// transaction. The initial password is the rider's name.
func CreateRiderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRiderRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name and mobile are required"})
			return
		}
		// Reject duplicate mobiles before touching the store
		var existing domain.User
		if err := db.Where("mobile = ?", req.Mobile).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mobile already registered"})
			return
		}
		// Hash the initial password
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Name), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		rider := domain.User{
			Name:     req.Name,
			Mobile:   req.Mobile,
			Email:    req.Mobile + "@rider.fleet", // Generated placeholder email
			Password: string(hash),
			Role:     domain.RoleRider,
		}
		// Actor and wallet appear together or not at all
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&rider).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Create(&domain.Wallet{
				UserID:     rider.ID,
				Balance:    decimal.Zero,
				CashOnHand: decimal.Zero,
				Earnings:   decimal.Zero,
			}).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"mobile": req.Mobile,  // Requested mobile
				"error":  err.Error(), // Error message
			}).Error("Failed to create rider") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rider"})
			return
		}
		// Return the new rider
		c.JSON(http.StatusOK, gin.H{"message": "Rider created successfully", "rider": rider})
	}
}

// EditUserRequest updates a profile; password only changes when provided
type EditUserRequest struct {
	ID       uint   `json:"id" binding:"required"`     // Target user id
	Name     string `json:"name" binding:"required"`   // New display name
	Mobile   string `json:"mobile" binding:"required"` // New mobile
	Email    string `json:"email"`                     // Optional email
	Password string `json:"password"`                  // Optional new password
}

// EditUserHandler applies a whitelisted profile update
func EditUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Id, name and mobile are required"})
			return
		}
		var user domain.User // Target must exist
		if err := db.First(&user, req.ID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// The mobile must stay unique, ignoring the user's own row
		var clash domain.User
		if err := db.Where("mobile = ? AND id <> ?", req.Mobile, req.ID).First(&clash).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Mobile already registered"})
			return
		}
		updates := map[string]any{
			"name":   req.Name,   // New display name
			"mobile": req.Mobile, // New mobile
		}
		if req.Email != "" {
			updates["email"] = req.Email
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			updates["password"] = string(hash)
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "rider": user})
	}
}

// FindRiderRequest searches by mobile, exact id, or name fragment
type FindRiderRequest struct {
	Query string `json:"query_input" binding:"required"` // Search term must be provided
}

// FindRiderHandler looks up a single rider for the admin console
func FindRiderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FindRiderRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query_input is required"})
			return
		}
		var rider domain.User // First rider matching the term
		err := db.Where("role = ?", domain.RoleRider).
			Where("mobile = ? OR name LIKE ? OR id = ?", req.Query, "%"+req.Query+"%", req.Query).
			First(&rider).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Rider not found"})
			return
		}
		c.JSON(http.StatusOK, rider)
	}
}
