package api

import (
	"errors"                         // Sentinel error checks
	"net/http"                       // HTTP status codes
	"railway_system/internal/auth"   // Authentication gate
	"railway_system/internal/backup" // Best-effort CSV backup sink
	"railway_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,alphanum"`           // Username must be provided
	Password   string `json:"password" binding:"required,min=8,max=72"`       // Password must be 8+ characters
	FullName   string `json:"full_name" binding:"required"`                   // Passenger full name
	Phone      string `json:"phone" binding:"required,len=10,numeric"`        // 10 digit phone number
	NationalID string `json:"national_id" binding:"omitempty,len=12,numeric"` // Optional 12 digit national id
	Address    string `json:"address" binding:"required"`                     // Postal address
	Pincode    string `json:"pincode" binding:"required,len=6,numeric"`       // 6 digit postal code
	Age        int    `json:"age" binding:"required,gte=15,lte=120"`          // Passenger age
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the issued JWT token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// RegisterHandler creates a new user through the authentication gate
func RegisterHandler(authSvc *auth.Service, bw *backup.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		profile := auth.Profile{
			Username: req.Username,
			FullName: req.FullName,
			Phone:    req.Phone,
			Address:  req.Address,
			Pincode:  req.Pincode,
			Age:      req.Age,
		}
		if req.NationalID != "" {
			profile.NationalID = &req.NationalID
		}
		user, err := authSvc.Register(c.Request.Context(), profile, req.Password)
		if err != nil {
			// Duplicate username or national id is a conflict
			if errors.Is(err, auth.ErrDuplicateUsername) || errors.Is(err, auth.ErrDuplicateNationalID) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		// Best-effort backup; failure is logged inside and never fails registration
		_ = bw.AppendUser(user)
		// Return the generated user id
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_id": user.UserID})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(authSvc *auth.Service, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		id, err := authSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			// Same message for unknown username and wrong password
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(id.UserID, id.FullName, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
