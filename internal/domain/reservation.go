package domain

import (
	"fmt"
	"strings"
	"time"
)

// BerthType is the seating/sleeping class of a reservation
type BerthType string

// Berth categories, stored uppercase
const (
	BerthLower  BerthType = "LOWER"  // Lower berth
	BerthUpper  BerthType = "UPPER"  // Upper berth
	BerthMiddle BerthType = "MIDDLE" // Middle berth
	BerthSide   BerthType = "SIDE"   // Side berth
)

// ParseBerth normalizes a berth category to its canonical uppercase form
func ParseBerth(s string) (BerthType, error) {
	b := BerthType(strings.ToUpper(strings.TrimSpace(s))) // Normalize case and whitespace
	switch b {
	case BerthLower, BerthUpper, BerthMiddle, BerthSide:
		return b, nil // Recognized category
	}
	return "", fmt.Errorf("unknown berth type %q", s) // Anything else is rejected
}

// Reservation Model
type Reservation struct {
	ReservationID uint      `gorm:"primaryKey"`             // Primary key, assigned by the store
	UserID        string    `gorm:"not null;size:30;index"` // Foreign key to User
	TrainNo       int       `gorm:"not null;index"`         // Foreign key to Train
	BerthType     BerthType `gorm:"size:10"`                // Berth category
	MealsRequired bool      // Meals included flag
	DepartureDate time.Time `gorm:"not null"`       // Travel date
	BookingDate   time.Time `gorm:"autoCreateTime"` // Timestamp of creation
}
