package booking

import (
	"context"                        // Context for the read query
	"errors"                         // Sentinel error checks
	"railway_system/internal/domain" // Importing domain models
	"time"                           // Travel dates
)

// ErrTicketNotFound means no committed reservation matches the requested
// user/train/date triple.
var ErrTicketNotFound = errors.New("no matching reservation for ticket")

// Ticket is the read-only projection of a committed reservation, joined
// with the passenger's display name and the train's name.
type Ticket struct {
	PassengerName string           `json:"passenger_name"` // Passenger full name
	TrainName     string           `json:"train_name"`     // Train name
	BerthType     domain.BerthType `json:"berth_type"`     // Berth category
	MealsRequired bool             `json:"meals_required"` // Meals included flag
	DepartureDate time.Time        `json:"departure_date"` // Travel date
}

// RenderTicket selects the most recently created reservation matching the
// triple. It mutates nothing and returns identical results until the
// underlying data changes.
func (e *Engine) RenderTicket(ctx context.Context, userID string, trainNo int, departureDate time.Time) (*Ticket, error) {
	var t Ticket
	err := e.db.WithContext(ctx).
		Table("reservations").
		Select("users.full_name AS passenger_name, trains.train_name, reservations.berth_type, reservations.meals_required, reservations.departure_date").
		Joins("JOIN users ON users.user_id = reservations.user_id").
		Joins("JOIN trains ON trains.train_no = reservations.train_no").
		Where("reservations.user_id = ? AND reservations.train_no = ? AND reservations.departure_date = ?", userID, trainNo, departureDate).
		Order("reservations.booking_date DESC, reservations.reservation_id DESC").
		Limit(1).
		Scan(&t).Error
	if err != nil {
		return nil, err
	}
	// Scan leaves the struct zeroed when no row matched
	if t.TrainName == "" && t.PassengerName == "" {
		return nil, ErrTicketNotFound
	}
	return &t, nil
}
