package api

import (
	"net/http" // HTTP status codes

	"fleet_wallet/internal/domain" // Importing domain models
	"fleet_wallet/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// LoginRequest carries the mobile-number credentials
type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`   // Mobile number must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginHandler authenticates an actor by mobile number and returns their
// profile plus a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Mobile and password are required"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("mobile = ?", req.Mobile).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
			return
		}
		// Return the profile and token
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   token,
			"user": gin.H{
				"id":     user.ID,     // Actor id
				"name":   user.Name,   // Display name
				"role":   user.Role,   // rider or admin
				"mobile": user.Mobile, // Login mobile
			},
		})
	}
}
