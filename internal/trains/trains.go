package trains

import (
	"context"                        // Context for store operations
	"errors"                         // Sentinel error checks
	"fmt"                            // Error formatting
	"railway_system/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Structured errors returned by train inventory management
var (
	ErrTrainNotFound  = errors.New("train not found")                    // NotFound: no such train
	ErrDuplicateTrain = errors.New("train number already exists")        // Conflict: number taken
	ErrTrainInUse     = errors.New("train has active reservations")      // Conflict: removal blocked
	ErrNegativeSeats  = errors.New("seats available cannot be negative") // Invalid seat count
)

// TrainField names a train column that may be updated in place
type TrainField string

// Updatable text fields
const (
	FieldName           TrainField = "train_name"     // Train name
	FieldStartingPoint  TrainField = "starting_point" // Origin station
	FieldDestination    TrainField = "destination"    // Destination station
	FieldSpecifications TrainField = "specifications" // Free-text specifications
)

// Service manages the train inventory store
type Service struct {
	db *gorm.DB
}

// NewService returns a train inventory service bound to the given store handle
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns all trains
func (s *Service) List(ctx context.Context) ([]domain.Train, error) {
	var all []domain.Train
	if err := s.db.WithContext(ctx).Order("train_no ASC").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// Get returns one train by number
func (s *Service) Get(ctx context.Context, trainNo int) (*domain.Train, error) {
	var t domain.Train
	if err := s.db.WithContext(ctx).Where("train_no = ?", trainNo).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Add creates a new train. A duplicate train number is a conflict.
func (s *Service) Add(ctx context.Context, t domain.Train) error {
	if t.SeatsAvailable < 0 {
		return ErrNegativeSeats
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTrain
		}
		return err
	}
	return nil
}

// UpdateField updates a single text column of a train
func (s *Service) UpdateField(ctx context.Context, trainNo int, field TrainField, value string) error {
	switch field {
	case FieldName, FieldStartingPoint, FieldDestination, FieldSpecifications:
	default:
		return fmt.Errorf("unknown train field %q", field)
	}
	res := s.db.WithContext(ctx).Model(&domain.Train{}).
		Where("train_no = ?", trainNo).
		Update(string(field), value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTrainNotFound
	}
	return nil
}

// SetSeats resets a train's seat counter to an absolute value.
// This is an inventory operation; bookings and cancellations never call it.
func (s *Service) SetSeats(ctx context.Context, trainNo, seats int) error {
	if seats < 0 {
		return ErrNegativeSeats
	}
	res := s.db.WithContext(ctx).Model(&domain.Train{}).
		Where("train_no = ?", trainNo).
		Update("seats_available", seats)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTrainNotFound
	}
	return nil
}

// Remove deletes a train. Removal is blocked while any reservation still
// references the train; cancel those first.
func (s *Service) Remove(ctx context.Context, trainNo int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Reservation{}).Where("train_no = ?", trainNo).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTrainInUse
		}
		res := tx.Where("train_no = ?", trainNo).Delete(&domain.Train{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTrainNotFound
		}
		return nil
	})
}
