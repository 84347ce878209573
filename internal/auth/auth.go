package auth

import (
	"context"                        // Context for store operations
	"errors"                         // Error wrapping helpers
	"fmt"                            // Error formatting
	"railway_system/internal/domain" // Importing domain models
	"time"                           // User ID generation

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Structured errors returned by the authentication gate
var (
	ErrDuplicateUsername   = errors.New("username already exists")        // Conflict: username taken
	ErrDuplicateNationalID = errors.New("national id already registered") // Conflict: national id taken
	ErrInvalidCredentials  = errors.New("invalid username or password")   // Unauthorized: never says which
	ErrLockedOut           = errors.New("maximum login attempts reached") // Unauthorized: session locked
	ErrUserNotFound        = errors.New("user not found")                 // NotFound: unknown user id
)

// MaxLoginAttempts is the number of consecutive failures a login session allows
const MaxLoginAttempts = 3

// dummyHash is compared against when the username is unknown, so a login
// attempt costs the same bcrypt work whether or not the user exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Profile carries the pre-validated registration fields
type Profile struct {
	Username   string  // Desired unique username
	FullName   string  // Passenger full name
	Phone      string  // Contact phone number
	NationalID *string // National identity number, optional
	Address    string  // Postal address
	Pincode    string  // Postal code
	Age        int     // Passenger age
}

// Identity is what a successful authentication yields
type Identity struct {
	UserID   string // Opaque unique user id
	FullName string // Display name
}

// Service implements the credential-based authentication gate
type Service struct {
	db *gorm.DB
}

// NewService returns an authentication service bound to the given store handle
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates a user with a freshly generated id and a salted bcrypt
// hash of the password. Equal plaintexts never produce equal hashes because
// bcrypt generates a random salt per call.
func (s *Service) Register(ctx context.Context, p Profile, password string) (*domain.User, error) {
	// Hash the password before touching the store
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	// Pre-check uniqueness so the caller learns which field collided
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", p.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}
	if p.NationalID != nil {
		if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("national_id = ?", *p.NationalID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateNationalID
		}
	}
	user := domain.User{
		UserID:     newUserID(),  // Generated identity
		Username:   p.Username,   // Unique username
		Password:   string(hash), // Salted hash, never the plaintext
		FullName:   p.FullName,
		Phone:      p.Phone,
		NationalID: p.NationalID,
		Address:    p.Address,
		Pincode:    p.Pincode,
		Age:        p.Age,
	}
	// Create the user; a unique-key violation here means we lost a race
	// with a concurrent registration after the pre-checks passed
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.classifyDuplicate(ctx, p)
		}
		return nil, err
	}
	return &user, nil
}

// classifyDuplicate decides which unique constraint a racing insert hit
func (s *Service) classifyDuplicate(ctx context.Context, p Profile) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", p.Username).Count(&count).Error; err == nil && count > 0 {
		return ErrDuplicateUsername
	}
	return ErrDuplicateNationalID
}

// Authenticate verifies a username/password pair and returns the user's
// identity and display name. Unknown username and wrong password both
// yield ErrInvalidCredentials; a bcrypt compare always runs so timing
// does not reveal which one it was.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	var user domain.User
	lookupErr := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	hash := dummyHash
	if lookupErr == nil {
		hash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if lookupErr != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	return &Identity{UserID: user.UserID, FullName: user.FullName}, nil
}

// Session tracks consecutive authentication failures for one login attempt.
// The counter is process-local and never persisted.
type Session struct {
	svc      *Service
	failures int
}

// NewSession starts a bounded-attempt login session
func (s *Service) NewSession() *Session {
	return &Session{svc: s}
}

// Authenticate runs one attempt within the session. The first two failures
// return ErrInvalidCredentials; the third and every later one return
// ErrLockedOut. A success resets nothing because the session is done.
func (s *Session) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	if s.failures >= MaxLoginAttempts {
		return nil, ErrLockedOut
	}
	id, err := s.svc.Authenticate(ctx, username, password)
	if err != nil {
		s.failures++
		if s.failures >= MaxLoginAttempts {
			return nil, ErrLockedOut
		}
		return nil, err
	}
	return id, nil
}

// Remaining reports how many attempts the session still allows
func (s *Session) Remaining() int {
	return MaxLoginAttempts - s.failures
}

// HasUsers reports whether any user has ever registered. The terminal
// front-end uses it to decide whether to start with registration.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// newUserID generates an opaque user id from the current clock, at
// nanosecond resolution so back-to-back registrations never collide
func newUserID() string {
	return fmt.Sprintf("USER%d", time.Now().UnixNano())
}
