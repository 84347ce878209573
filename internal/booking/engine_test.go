package booking

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"railway_system/internal/domain"

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

func seedUser(t *testing.T, db *gorm.DB, userID, fullName string) {
	t.Helper()
	require.NoError(t, db.Create(&domain.User{
		UserID:   userID,
		Username: userID,
		Password: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		FullName: fullName,
		Phone:    "9876543210",
		Address:  "12 Station Road",
		Pincode:  "560001",
		Age:      30,
	}).Error)
}

func seedTrain(t *testing.T, db *gorm.DB, trainNo, seats int, name string) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Train{
		TrainNo:        trainNo,
		TrainName:      name,
		StartingPoint:  "Central",
		Destination:    "Harbour",
		SeatsAvailable: seats,
	}).Error)
}

func seats(t *testing.T, db *gorm.DB, trainNo int) int {
	t.Helper()
	var train domain.Train
	require.NoError(t, db.Where("train_no = ?", trainNo).First(&train).Error)
	return train.SeatsAvailable
}

func activeReservations(t *testing.T, db *gorm.DB, trainNo int) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&domain.Reservation{}).Where("train_no = ?", trainNo).Count(&count).Error)
	return count
}

var travelDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestEngine_Book(t *testing.T) {
	t.Run("successful booking decrements the counter", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "USER1", "Alice")
		seedTrain(t, db, 12, 3, "Coast Express")
		engine := NewEngine(db)

		id, err := engine.Book(context.Background(), Request{
			UserID: "USER1", TrainNo: 12, Berth: domain.BerthLower,
			MealsRequired: true, DepartureDate: travelDate,
		})

		require.NoError(t, err)
		assert.NotZero(t, id, "reservation id must be assigned by the store")
		assert.Equal(t, 2, seats(t, db, 12))

		var r domain.Reservation
		require.NoError(t, db.Where("reservation_id = ?", id).First(&r).Error)
		assert.Equal(t, "USER1", r.UserID)
		assert.Equal(t, domain.BerthLower, r.BerthType)
		assert.True(t, r.MealsRequired)
	})

	t.Run("unknown train", func(t *testing.T) {
		db := setupTestDB(t)
		engine := NewEngine(db)

		_, err := engine.Book(context.Background(), Request{
			UserID: "USER1", TrainNo: 404, Berth: domain.BerthUpper, DepartureDate: travelDate,
		})
		assert.ErrorIs(t, err, ErrTrainNotFound)
	})

	t.Run("sold-out train never mutates state", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "USER1", "Alice")
		seedTrain(t, db, 12, 0, "Coast Express")
		engine := NewEngine(db)

		_, err := engine.Book(context.Background(), Request{
			UserID: "USER1", TrainNo: 12, Berth: domain.BerthLower, DepartureDate: travelDate,
		})

		assert.ErrorIs(t, err, ErrNoSeatsAvailable)
		assert.Equal(t, 0, seats(t, db, 12), "counter must stay at zero")
		assert.Zero(t, activeReservations(t, db, 12), "no orphan reservation may remain")
	})

	t.Run("counter invariant over a run of bookings", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "USER1", "Alice")
		seedTrain(t, db, 12, 5, "Coast Express")
		engine := NewEngine(db)

		for i := 0; i < 3; i++ {
			_, err := engine.Book(context.Background(), Request{
				UserID: "USER1", TrainNo: 12, Berth: domain.BerthMiddle, DepartureDate: travelDate,
			})
			require.NoError(t, err)
		}

		assert.Equal(t, int64(3), activeReservations(t, db, 12))
		assert.Equal(t, 5-3, seats(t, db, 12), "seats must equal initial minus active reservations")
	})
}

func TestEngine_Cancel(t *testing.T) {
	t.Run("cancel restores the seat and removes the row", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "USER1", "Alice")
		seedTrain(t, db, 12, 2, "Coast Express")
		engine := NewEngine(db)

		id, err := engine.Book(context.Background(), Request{
			UserID: "USER1", TrainNo: 12, Berth: domain.BerthLower, DepartureDate: travelDate,
		})
		require.NoError(t, err)
		require.Equal(t, 1, seats(t, db, 12))

		cancelled, err := engine.Cancel(context.Background(), "USER1", id)
		require.NoError(t, err)
		assert.Equal(t, 12, cancelled.TrainNo, "callers need the train to drop cached views")
		assert.Equal(t, travelDate.Format("2006-01-02"), cancelled.DepartureDate.Format("2006-01-02"),
			"callers need the travel date to drop the cached ticket")

		assert.Equal(t, 2, seats(t, db, 12), "cancel must restore the pre-booking counter")
		assert.Zero(t, activeReservations(t, db, 12))

		// A second cancel of the same id fails without touching the counter
		_, err = engine.Cancel(context.Background(), "USER1", id)
		assert.ErrorIs(t, err, ErrReservationNotFound)
		assert.Equal(t, 2, seats(t, db, 12))
	})

	t.Run("cancel by a non-owner fails as not found", func(t *testing.T) {
		db := setupTestDB(t)
		seedUser(t, db, "USER1", "Alice")
		seedUser(t, db, "USER2", "Bob")
		seedTrain(t, db, 12, 2, "Coast Express")
		engine := NewEngine(db)

		id, err := engine.Book(context.Background(), Request{
			UserID: "USER1", TrainNo: 12, Berth: domain.BerthLower, DepartureDate: travelDate,
		})
		require.NoError(t, err)

		_, err = engine.Cancel(context.Background(), "USER2", id)
		assert.ErrorIs(t, err, ErrReservationNotFound,
			"ownership violation must look identical to a missing reservation")
		assert.Equal(t, int64(1), activeReservations(t, db, 12), "the reservation must survive")
		assert.Equal(t, 1, seats(t, db, 12))
	})

	t.Run("cancel of an unknown id", func(t *testing.T) {
		db := setupTestDB(t)
		engine := NewEngine(db)

		_, err := engine.Cancel(context.Background(), "USER1", 1234)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}

// One remaining seat, two passengers taking turns on it.
func TestEngine_LastSeatScenario(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "USERA", "Alice")
	seedUser(t, db, "USERB", "Bob")
	seedTrain(t, db, 12, 1, "Coast Express")
	engine := NewEngine(db)

	// A takes the last seat
	idA, err := engine.Book(context.Background(), Request{
		UserID: "USERA", TrainNo: 12, Berth: domain.BerthLower, DepartureDate: travelDate,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, seats(t, db, 12))

	// B finds the train sold out
	_, err = engine.Book(context.Background(), Request{
		UserID: "USERB", TrainNo: 12, Berth: domain.BerthLower, DepartureDate: travelDate,
	})
	assert.ErrorIs(t, err, ErrNoSeatsAvailable)

	// A cancels; the seat frees up
	_, err = engine.Cancel(context.Background(), "USERA", idA)
	require.NoError(t, err)
	assert.Equal(t, 1, seats(t, db, 12))

	// B retries and succeeds
	_, err = engine.Book(context.Background(), Request{
		UserID: "USERB", TrainNo: 12, Berth: domain.BerthLower, DepartureDate: travelDate,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, seats(t, db, 12))
}

// Concurrent bookings against a nearly sold-out train: exactly k of N
// may win, the counter may never go negative, and every reservation row
// must be matched by a decrement.
func TestEngine_ConcurrentBookings(t *testing.T) {
	const initialSeats = 2
	const attempts = 6

	// Immediate transactions plus a generous busy timeout serialize
	// SQLite writers instead of failing them
	dsn := "file:" + filepath.Join(t.TempDir(), "concurrent.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Train{}, &domain.Reservation{}))

	seedUser(t, db, "USER1", "Alice")
	seedTrain(t, db, 12, initialSeats, "Coast Express")
	engine := NewEngine(db)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Book(context.Background(), Request{
				UserID: "USER1", TrainNo: 12, Berth: domain.BerthSide, DepartureDate: travelDate,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, soldOut int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNoSeatsAvailable):
			soldOut++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}

	assert.Equal(t, initialSeats, successes, "exactly one success per seat")
	assert.Equal(t, attempts-initialSeats, soldOut, "every other attempt reports exhaustion")
	assert.Equal(t, 0, seats(t, db, 12), "counter ends at zero, never negative")
	assert.Equal(t, int64(initialSeats), activeReservations(t, db, 12),
		"each committed reservation corresponds to one decrement")
}

func TestEngine_ListForUser(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "USER1", "Alice")
	seedUser(t, db, "USER2", "Bob")
	seedTrain(t, db, 12, 5, "Coast Express")
	seedTrain(t, db, 34, 5, "Night Mail")
	engine := NewEngine(db)

	laterDate := travelDate.AddDate(0, 1, 0)
	// Book out of date order to prove the listing sorts
	_, err := engine.Book(context.Background(), Request{
		UserID: "USER1", TrainNo: 34, Berth: domain.BerthUpper, DepartureDate: laterDate,
	})
	require.NoError(t, err)
	_, err = engine.Book(context.Background(), Request{
		UserID: "USER1", TrainNo: 12, Berth: domain.BerthLower, MealsRequired: true, DepartureDate: travelDate,
	})
	require.NoError(t, err)
	_, err = engine.Book(context.Background(), Request{
		UserID: "USER2", TrainNo: 12, Berth: domain.BerthSide, DepartureDate: travelDate,
	})
	require.NoError(t, err)

	views, err := engine.ListForUser(context.Background(), "USER1")
	require.NoError(t, err)
	require.Len(t, views, 2, "only the user's own reservations appear")

	assert.Equal(t, "Coast Express", views[0].TrainName, "earliest travel date first")
	assert.Equal(t, domain.BerthLower, views[0].BerthType)
	assert.True(t, views[0].MealsRequired)
	assert.Equal(t, "Night Mail", views[1].TrainName)

	// The returned slice is restartable: a second pass sees the same rows
	first := make([]uint, 0, len(views))
	for _, v := range views {
		first = append(first, v.ReservationID)
	}
	second := make([]uint, 0, len(views))
	for _, v := range views {
		second = append(second, v.ReservationID)
	}
	assert.Equal(t, first, second)

	empty, err := engine.ListForUser(context.Background(), "USER999")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
