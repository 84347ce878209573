package api

import (
	"context"                        // Context for Redis operations
	"errors"                         // Sentinel error checks
	"net/http"                       // HTTP status codes
	"railway_system/internal/domain" // Importing domain models
	"railway_system/internal/trains" // Train inventory service
	"railway_system/internal/utils"  // Utility functions
	"strconv"                        // Path parameter conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// AddTrainRequest represents a new train
type AddTrainRequest struct {
	TrainNo        int    `json:"train_no" binding:"required,gt=0"`        // Train number
	TrainName      string `json:"train_name" binding:"required"`           // Train name
	StartingPoint  string `json:"starting_point" binding:"required"`       // Origin station
	Destination    string `json:"destination" binding:"required"`          // Destination station
	Specifications string `json:"specifications"`                          // Optional free text
	SeatsAvailable int    `json:"seats_available" binding:"required,gt=0"` // Initial seat count
}

// UpdateTrainRequest represents a field-level train update
type UpdateTrainRequest struct {
	Field string `json:"field" binding:"required"` // Column to update
	Value string `json:"value" binding:"required"` // New value
}

// ListTrainsHandler returns all trains with their seat counters
func ListTrainsHandler(svc *trains.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()      // Context for Redis operations
		cacheKey := utils.TrainListKey() // Cache key for the full listing
		var cached []domain.Train
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"trains": cached, "cached": true})
			return
		}
		all, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trains"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, all, utils.CacheTTL)  // Cache the listing
		c.JSON(http.StatusOK, gin.H{"trains": all, "cached": false}) // Return trains
	}
}

// AddTrainHandler creates a new train
func AddTrainHandler(svc *trains.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddTrainRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		err := svc.Add(c.Request.Context(), domain.Train{
			TrainNo:        req.TrainNo,
			TrainName:      req.TrainName,
			StartingPoint:  req.StartingPoint,
			Destination:    req.Destination,
			Specifications: req.Specifications,
			SeatsAvailable: req.SeatsAvailable,
		})
		if err != nil {
			if errors.Is(err, trains.ErrDuplicateTrain) {
				c.JSON(http.StatusConflict, gin.H{"error": "Train number already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add train"})
			return
		}
		invalidateTrainList(c) // The listing changed
		c.JSON(http.StatusCreated, gin.H{"message": "Train added successfully"})
	}
}

// UpdateTrainHandler updates one field of a train
func UpdateTrainHandler(svc *trains.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainNo, err := strconv.Atoi(c.Param("trainNo")) // Train number from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid train number"})
			return
		}
		var req UpdateTrainRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The seat counter takes the integer path; everything else is text
		if req.Field == "seats_available" {
			seats, convErr := strconv.Atoi(req.Value)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seat count"})
				return
			}
			err = svc.SetSeats(c.Request.Context(), trainNo, seats)
		} else {
			err = svc.UpdateField(c.Request.Context(), trainNo, trains.TrainField(req.Field), req.Value)
		}
		if err != nil {
			switch {
			case errors.Is(err, trains.ErrTrainNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Train not found"})
			case errors.Is(err, trains.ErrNegativeSeats):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Seats cannot be negative"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update train"})
			}
			return
		}
		invalidateTrainList(c) // The listing changed
		c.JSON(http.StatusOK, gin.H{"message": "Train details updated successfully"})
	}
}

// RemoveTrainHandler deletes a train without active reservations
func RemoveTrainHandler(svc *trains.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainNo, err := strconv.Atoi(c.Param("trainNo")) // Train number from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid train number"})
			return
		}
		if err := svc.Remove(c.Request.Context(), trainNo); err != nil {
			switch {
			case errors.Is(err, trains.ErrTrainNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Train not found"})
			case errors.Is(err, trains.ErrTrainInUse):
				c.JSON(http.StatusConflict, gin.H{"error": "Train has active reservations"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove train"})
			}
			return
		}
		invalidateTrainList(c) // The listing changed
		c.JSON(http.StatusOK, gin.H{"message": "Train removed successfully"})
	}
}

// invalidateTrainList drops the cached train listing after a write
func invalidateTrainList(c *gin.Context) {
	if v, exists := c.Get("redisClient"); exists {
		rdb := v.(*redis.Client)
		_ = utils.DeleteCache(context.Background(), rdb, utils.TrainListKey())
	}
}
