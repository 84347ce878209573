package api

import (
	"errors"                       // Sentinel error checks
	"net/http"                     // HTTP status codes
	"railway_system/internal/auth" // Authentication gate and profile operations

	"github.com/gin-gonic/gin" // Gin web framework
)

// ProfileResponse is the user profile without the credential hash
type ProfileResponse struct {
	UserID     string `json:"user_id"`               // Opaque user id
	Username   string `json:"username"`              // Unique username
	FullName   string `json:"full_name"`             // Passenger full name
	Phone      string `json:"phone"`                 // Contact phone number
	NationalID string `json:"national_id,omitempty"` // National id when present
	Address    string `json:"address"`               // Postal address
	Pincode    string `json:"pincode"`               // Postal code
	Age        int    `json:"age"`                   // Passenger age
}

// UpdateProfileRequest represents a field-level profile update
type UpdateProfileRequest struct {
	Field string `json:"field" binding:"required,oneof=full_name phone address pincode"` // Column to update
	Value string `json:"value" binding:"required"`                                       // New value
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`          // Current password
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"` // New password, 8+ characters
}

// GetProfileHandler returns the authenticated user's profile
func GetProfileHandler(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := authSvc.Profile(c.Request.Context(), userID.(string))
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
			return
		}
		resp := ProfileResponse{
			UserID:   user.UserID,
			Username: user.Username,
			FullName: user.FullName,
			Phone:    user.Phone,
			Address:  user.Address,
			Pincode:  user.Pincode,
			Age:      user.Age,
		}
		if user.NationalID != nil {
			resp.NationalID = *user.NationalID
		}
		c.JSON(http.StatusOK, gin.H{"profile": resp}) // Return profile without the hash
	}
}

// UpdateProfileHandler updates a single profile field
func UpdateProfileHandler(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		err := authSvc.UpdateProfileField(c.Request.Context(), userID.(string), auth.ProfileField(req.Field), req.Value)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
	}
}

// ChangePasswordHandler verifies the current password and stores a new hash
func ChangePasswordHandler(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		err := authSvc.ChangePassword(c.Request.Context(), userID.(string), req.CurrentPassword, req.NewPassword)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect current password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}
