package auth

import (
	"context"                        // Context for store operations
	"errors"                         // Sentinel error checks
	"fmt"                            // Error formatting
	"railway_system/internal/domain" // Importing domain models

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// ProfileField names a user profile column that may be updated in place
type ProfileField string

// Updatable profile fields
const (
	FieldFullName ProfileField = "full_name" // Passenger full name
	FieldPhone    ProfileField = "phone"     // Contact phone number
	FieldAddress  ProfileField = "address"   // Postal address
	FieldPincode  ProfileField = "pincode"   // Postal code
)

// Profile returns the stored profile for a user id
func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfileField updates a single profile column for a user.
// The value is assumed pre-validated by the caller.
func (s *Service) UpdateProfileField(ctx context.Context, userID string, field ProfileField, value string) error {
	switch field {
	case FieldFullName, FieldPhone, FieldAddress, FieldPincode:
	default:
		return fmt.Errorf("unknown profile field %q", field)
	}
	res := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update(string(field), value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ChangePassword verifies the current password and replaces the stored
// hash with a fresh salted hash of the new one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	// Verify the current password before accepting the change
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("password", string(hash)).Error
}
