package booking

import (
	"context"                        // Context bounds every transaction
	"errors"                         // Sentinel error checks
	"railway_system/internal/domain" // Importing domain models
	"time"                           // Travel dates

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Structured errors returned by the reservation engine
var (
	ErrTrainNotFound       = errors.New("train not found")                            // NotFound: no such train
	ErrNoSeatsAvailable    = errors.New("no seats available on this train")           // ResourceExhausted: counter at zero
	ErrReservationNotFound = errors.New("reservation not found or not owned by user") // NotFound: absent or wrong owner
)

// BookingError reports a booking transaction that rolled back, preserving
// the underlying store-level cause.
type BookingError struct {
	Cause error
}

func (e *BookingError) Error() string { return "booking failed: " + e.Cause.Error() }
func (e *BookingError) Unwrap() error { return e.Cause }

// CancellationError reports a cancellation transaction that rolled back.
type CancellationError struct {
	Cause error
}

func (e *CancellationError) Error() string { return "cancellation failed: " + e.Cause.Error() }
func (e *CancellationError) Unwrap() error { return e.Cause }

// Request carries the pre-validated inputs for a booking
type Request struct {
	UserID        string           // Owning user id
	TrainNo       int              // Train number to book
	Berth         domain.BerthType // Normalized berth category
	MealsRequired bool             // Meals included flag
	DepartureDate time.Time        // Travel date, already parsed
}

// Engine owns the write path between the seat counter and reservation
// rows. Nothing else mutates seats_available.
type Engine struct {
	db *gorm.DB
}

// NewEngine returns a reservation engine bound to the given store handle
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Book atomically inserts a reservation and takes one seat from the train.
// The decrement is a single conditional UPDATE guarded by
// seats_available > 0 so that two concurrent bookings of the last seat
// can never both commit; the loser's insert rolls back with the rest of
// the transaction.
func (e *Engine) Book(ctx context.Context, req Request) (uint, error) {
	var reservationID uint
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load the train; absence and exhaustion are terminal - no retry
		var train domain.Train
		if err := tx.Where("train_no = ?", req.TrainNo).First(&train).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTrainNotFound
			}
			return err
		}
		if train.SeatsAvailable <= 0 {
			return ErrNoSeatsAvailable
		}
		// Insert the reservation row; the store assigns the id
		r := domain.Reservation{
			UserID:        req.UserID,
			TrainNo:       req.TrainNo,
			BerthType:     req.Berth,
			MealsRequired: req.MealsRequired,
			DepartureDate: req.DepartureDate,
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		// Take the seat with a conditional decrement; zero rows affected
		// means a concurrent booking got there first
		res := tx.Model(&domain.Train{}).
			Where("train_no = ? AND seats_available > 0", req.TrainNo).
			Update("seats_available", gorm.Expr("seats_available - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoSeatsAvailable
		}
		reservationID = r.ReservationID
		return nil // Commit transaction
	})
	if err != nil {
		// Business outcomes pass through unwrapped
		if errors.Is(err, ErrTrainNotFound) || errors.Is(err, ErrNoSeatsAvailable) {
			return 0, err
		}
		// Anything else is a rolled-back store failure
		logrus.WithFields(logrus.Fields{
			"user_id":  req.UserID,
			"train_no": req.TrainNo,
			"error":    err.Error(),
		}).Error("Booking transaction rolled back")
		return 0, &BookingError{Cause: err}
	}
	return reservationID, nil
}

// Cancelled identifies the reservation a successful Cancel removed, so
// callers can drop any cached views keyed on it.
type Cancelled struct {
	TrainNo       int       // Train the seat went back to
	DepartureDate time.Time // Travel date of the removed reservation
}

// Cancel atomically deletes a reservation and returns its seat to the
// train. The row is matched by both reservation id and user id, so a
// user can only cancel their own reservation.
func (e *Engine) Cancel(ctx context.Context, userID string, reservationID uint) (*Cancelled, error) {
	var cancelled Cancelled
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load the reservation to learn which train to credit
		var r domain.Reservation
		if err := tx.Where("reservation_id = ? AND user_id = ?", reservationID, userID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		// Delete the reservation row
		res := tx.Where("reservation_id = ? AND user_id = ?", reservationID, userID).
			Delete(&domain.Reservation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReservationNotFound
		}
		// Release the seat back to the train
		if err := tx.Model(&domain.Train{}).
			Where("train_no = ?", r.TrainNo).
			Update("seats_available", gorm.Expr("seats_available + 1")).Error; err != nil {
			return err
		}
		cancelled = Cancelled{TrainNo: r.TrainNo, DepartureDate: r.DepartureDate}
		return nil // Commit transaction
	})
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,
			"reservation_id": reservationID,
			"error":          err.Error(),
		}).Error("Cancellation transaction rolled back")
		return nil, &CancellationError{Cause: err}
	}
	return &cancelled, nil
}

// ReservationView is one row of a user's reservation listing, joined
// with the train name.
type ReservationView struct {
	ReservationID uint             `json:"reservation_id"` // Reservation id
	TrainNo       int              `json:"train_no"`       // Train number
	TrainName     string           `json:"train_name"`     // Train name from the join
	BerthType     domain.BerthType `json:"berth_type"`     // Berth category
	MealsRequired bool             `json:"meals_required"` // Meals included flag
	DepartureDate time.Time        `json:"departure_date"` // Travel date
	BookingDate   time.Time        `json:"booking_date"`   // Creation timestamp
}

// ListForUser returns the user's reservations joined with train names,
// ordered by travel date ascending. The result is a materialized slice,
// so callers may range over it repeatedly without re-querying.
func (e *Engine) ListForUser(ctx context.Context, userID string) ([]ReservationView, error) {
	var views []ReservationView
	err := e.db.WithContext(ctx).
		Table("reservations").
		Select("reservations.reservation_id, reservations.train_no, trains.train_name, reservations.berth_type, reservations.meals_required, reservations.departure_date, reservations.booking_date").
		Joins("JOIN trains ON trains.train_no = reservations.train_no").
		Where("reservations.user_id = ?", userID).
		Order("reservations.departure_date ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
