package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"railway_system/internal/auth"
	"railway_system/internal/backup"
	"railway_system/internal/booking"
	"railway_system/internal/domain"
	"railway_system/internal/trains"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares a file-backed SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "railway_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&domain.User{}, &domain.Train{}, &domain.Reservation{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

// newTestApp wires an App over scripted input and captured output.
func newTestApp(t *testing.T, db *gorm.DB, script string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	app := NewApp(
		auth.NewService(db),
		booking.NewEngine(db),
		trains.NewService(db),
		backup.NewWriter(filepath.Join(t.TempDir(), "users_backup.csv")),
		strings.NewReader(script),
		out,
	)
	return app, out
}

func registerTestUser(t *testing.T, db *gorm.DB) {
	t.Helper()
	nationalID := "111122223333"
	_, err := auth.NewService(db).Register(context.Background(), auth.Profile{
		Username:   "alice",
		FullName:   "Alice Example",
		Phone:      "9876543210",
		NationalID: &nationalID,
		Address:    "12 Station Road",
		Pincode:    "560001",
		Age:        30,
	}, "password123")
	require.NoError(t, err)
}

func TestApp_LockoutAfterThreeFailures(t *testing.T) {
	db := setupTestDB(t)
	registerTestUser(t, db)

	script := "alice\nwrong1\nalice\nwrong2\nalice\nwrong3\n"
	app, out := newTestApp(t, db, script)

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Invalid credentials. Attempts remaining: 2")
	assert.Contains(t, out.String(), "Invalid credentials. Attempts remaining: 1")
	assert.Contains(t, out.String(), "Maximum login attempts reached")
	assert.NotContains(t, out.String(), "MAIN MENU", "a locked-out session never reaches the menu")
}

func TestApp_BookThroughMenus(t *testing.T) {
	db := setupTestDB(t)
	registerTestUser(t, db)
	require.NoError(t, trains.NewService(db).Add(context.Background(), domain.Train{
		TrainNo:        12,
		TrainName:      "Coast Express",
		StartingPoint:  "Central",
		Destination:    "Harbour",
		SeatsAvailable: 5,
	}))

	// login, reservation menu, make reservation, then logout
	script := strings.Join([]string{
		"alice", "password123", // login
		"2",          // main menu: reservation system
		"1",          // make reservation
		"12",         // train number
		"Lower",      // berth type
		"Y",          // meals
		"2025-03-01", // departure date
		"4",          // logout
	}, "\n") + "\n"
	app, out := newTestApp(t, db, script)

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Welcome, Alice Example!")
	assert.Contains(t, out.String(), "Reservation successful!")
	assert.Contains(t, out.String(), "=== YOUR TICKET ===")
	assert.Contains(t, out.String(), "Coast Express")

	var train domain.Train
	require.NoError(t, db.Where("train_no = ?", 12).First(&train).Error)
	assert.Equal(t, 4, train.SeatsAvailable, "the menu booking must go through the engine")
}

func TestApp_RegistrationWhenStoreEmpty(t *testing.T) {
	db := setupTestDB(t)

	// registration prompts, then login with the new credentials, then logout
	script := strings.Join([]string{
		"Alice Example",        // full name
		"30",                   // age
		"9876543210",           // phone
		"111122223333",         // national id
		"12 Station Road",      // address
		"560001",               // pincode
		"alice",                // username
		"password123",          // password
		"alice", "password123", // login
		"4", // logout
	}, "\n") + "\n"
	app, out := newTestApp(t, db, script)

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "=== NEW USER REGISTRATION ===")
	assert.Contains(t, out.String(), "Registration successful!")
	assert.Contains(t, out.String(), "Welcome, Alice Example!")

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
