package api

import (
	"context"                         // Context for Redis operations
	"errors"                          // Sentinel error checks
	"net/http"                        // HTTP status codes
	"railway_system/internal/booking" // Reservation engine
	"railway_system/internal/domain"  // Importing domain models
	"railway_system/internal/utils"   // Utility functions
	"time"                            // Date parsing

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// dateLayout is the wire format for travel dates
const dateLayout = "2006-01-02"

// BookRequest represents a booking request
type BookRequest struct {
	TrainNo       int    `json:"train_no" binding:"required"`                           // Train number
	BerthType     string `json:"berth_type" binding:"required"`                         // Berth category
	MealsRequired bool   `json:"meals_required"`                                        // Meals included flag
	DepartureDate string `json:"departure_date" binding:"required,datetime=2006-01-02"` // Travel date
}

// BookHandler books one seat for the authenticated user
func BookHandler(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req BookRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Normalize the berth category before it reaches the engine
		berth, err := domain.ParseBerth(req.BerthType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid berth type"})
			return
		}
		departure, err := time.Parse(dateLayout, req.DepartureDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departure date"})
			return
		}
		reservationID, err := engine.Book(c.Request.Context(), booking.Request{
			UserID:        userID.(string),
			TrainNo:       req.TrainNo,
			Berth:         berth,
			MealsRequired: req.MealsRequired,
			DepartureDate: departure,
		})
		// Map engine outcomes to HTTP statuses
		if err != nil {
			switch {
			case errors.Is(err, booking.ErrTrainNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Train not found"})
			case errors.Is(err, booking.ErrNoSeatsAvailable):
				c.JSON(http.StatusConflict, gin.H{"error": "No seats available on this train"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Booking failed"})
			}
			return
		}
		// Invalidate cached views the booking changed
		if v, exists := c.Get("redisClient"); exists {
			rdb := v.(*redis.Client)
			ctx := context.Background() // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb,
				utils.TrainListKey(),                                             // Seat counter changed
				utils.ReservationsKey(userID.(string)),                           // User's listing changed
				utils.TicketKey(userID.(string), req.TrainNo, req.DepartureDate), // New latest ticket
			)
		}
		// Return the new reservation identity
		c.JSON(http.StatusCreated, gin.H{"message": "Reservation successful", "reservation_id": reservationID})
	}
}

// CancelHandler cancels one of the authenticated user's reservations
func CancelHandler(engine *booking.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req struct {
			ReservationID uint `json:"reservation_id" binding:"required"` // Reservation to cancel
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		cancelled, err := engine.Cancel(c.Request.Context(), userID.(string), req.ReservationID)
		if err != nil {
			// Not-owned and absent look the same to the caller
			if errors.Is(err, booking.ErrReservationNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cancellation failed"})
			return
		}
		// Invalidate cached views the cancellation changed
		if v, exists := c.Get("redisClient"); exists {
			rdb := v.(*redis.Client)
			ctx := context.Background() // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb,
				utils.TrainListKey(),                   // Seat counter changed
				utils.ReservationsKey(userID.(string)), // User's listing changed
				utils.TicketKey(userID.(string), cancelled.TrainNo,
					cancelled.DepartureDate.Format(dateLayout)), // Cancelled ticket must stop serving
			)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled successfully"})
	}
}

// MyReservationsHandler returns the authenticated user's reservations
// joined with train names, ordered by travel date
func MyReservationsHandler(engine *booking.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                        // Context for Redis operations
		cacheKey := utils.ReservationsKey(userID.(string)) // Cache key for this user's listing
		var cached []booking.ReservationView
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"reservations": cached, "cached": true})
			return
		}
		views, err := engine.ListForUser(c.Request.Context(), userID.(string))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, views, utils.CacheTTL)        // Cache the listing
		c.JSON(http.StatusOK, gin.H{"reservations": views, "cached": false}) // Return reservations
	}
}

// TicketHandler renders the ticket for the latest matching reservation
func TicketHandler(engine *booking.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req struct {
			TrainNo       int    `form:"train_no" binding:"required"`                           // Train number
			DepartureDate string `form:"departure_date" binding:"required,datetime=2006-01-02"` // Travel date
		}
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		departure, err := time.Parse(dateLayout, req.DepartureDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departure date"})
			return
		}
		ctx := context.Background()                                                  // Context for Redis operations
		cacheKey := utils.TicketKey(userID.(string), req.TrainNo, req.DepartureDate) // Cache key for this ticket
		var cached booking.Ticket
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"ticket": cached, "cached": true})
			return
		}
		ticket, err := engine.RenderTicket(c.Request.Context(), userID.(string), req.TrainNo, departure)
		if err != nil {
			if errors.Is(err, booking.ErrTicketNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render ticket"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, ticket, utils.CacheTTL)  // Cache the ticket
		c.JSON(http.StatusOK, gin.H{"ticket": ticket, "cached": false}) // Return the ticket
	}
}
