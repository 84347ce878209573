package trains

import (
	"context"
	"path/filepath"
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

func sampleTrain(trainNo, seats int) domain.Train {
	return domain.Train{
		TrainNo:        trainNo,
		TrainName:      "Coast Express",
		StartingPoint:  "Central",
		Destination:    "Harbour",
		Specifications: "AC",
		SeatsAvailable: seats,
	}
}

func TestService_AddAndList(t *testing.T) {
	svc := NewService(setupTestDB(t))

	require.NoError(t, svc.Add(context.Background(), sampleTrain(34, 10)))
	require.NoError(t, svc.Add(context.Background(), sampleTrain(12, 5)))

	t.Run("duplicate train number", func(t *testing.T) {
		err := svc.Add(context.Background(), sampleTrain(12, 99))
		assert.ErrorIs(t, err, ErrDuplicateTrain)
	})

	t.Run("negative initial seats rejected", func(t *testing.T) {
		err := svc.Add(context.Background(), sampleTrain(56, -1))
		assert.ErrorIs(t, err, ErrNegativeSeats)
	})

	t.Run("list orders by train number", func(t *testing.T) {
		all, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, 12, all[0].TrainNo)
		assert.Equal(t, 34, all[1].TrainNo)
	})

	t.Run("get", func(t *testing.T) {
		train, err := svc.Get(context.Background(), 12)
		require.NoError(t, err)
		assert.Equal(t, "Coast Express", train.TrainName)

		_, err = svc.Get(context.Background(), 404)
		assert.ErrorIs(t, err, ErrTrainNotFound)
	})
}

func TestService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	require.NoError(t, svc.Add(context.Background(), sampleTrain(12, 5)))

	t.Run("text field update", func(t *testing.T) {
		require.NoError(t, svc.UpdateField(context.Background(), 12, FieldDestination, "Hillside"))

		train, err := svc.Get(context.Background(), 12)
		require.NoError(t, err)
		assert.Equal(t, "Hillside", train.Destination)
		assert.Equal(t, "Coast Express", train.TrainName, "other fields stay untouched")
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		err := svc.UpdateField(context.Background(), 12, TrainField("seats_available"), "10")
		assert.Error(t, err, "the counter must not be writable through the text path")
	})

	t.Run("set seats", func(t *testing.T) {
		require.NoError(t, svc.SetSeats(context.Background(), 12, 8))
		train, err := svc.Get(context.Background(), 12)
		require.NoError(t, err)
		assert.Equal(t, 8, train.SeatsAvailable)
	})

	t.Run("update to the current value still succeeds", func(t *testing.T) {
		require.NoError(t, svc.UpdateField(context.Background(), 12, FieldDestination, "Hillside"),
			"a no-op update of an existing train must not report not-found")
		require.NoError(t, svc.SetSeats(context.Background(), 12, 8),
			"re-setting the current seat count must not report not-found")
	})

	t.Run("negative seats rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetSeats(context.Background(), 12, -3), ErrNegativeSeats)
	})

	t.Run("missing train", func(t *testing.T) {
		assert.ErrorIs(t, svc.UpdateField(context.Background(), 404, FieldName, "Ghost"), ErrTrainNotFound)
		assert.ErrorIs(t, svc.SetSeats(context.Background(), 404, 1), ErrTrainNotFound)
	})
}

func TestService_Remove(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	require.NoError(t, svc.Add(context.Background(), sampleTrain(12, 5)))
	require.NoError(t, svc.Add(context.Background(), sampleTrain(34, 5)))

	t.Run("removal blocked while reservations reference the train", func(t *testing.T) {
		require.NoError(t, db.Create(&domain.User{
			UserID: "USER1", Username: "alice", Password: "hash",
			FullName: "Alice", Phone: "9876543210", Address: "12 Station Road", Pincode: "560001", Age: 30,
		}).Error)
		require.NoError(t, db.Create(&domain.Reservation{
			UserID: "USER1", TrainNo: 12, BerthType: domain.BerthLower,
			DepartureDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		}).Error)

		err := svc.Remove(context.Background(), 12)
		assert.ErrorIs(t, err, ErrTrainInUse)

		_, err = svc.Get(context.Background(), 12)
		assert.NoError(t, err, "the train must survive a blocked removal")
	})

	t.Run("removal succeeds without reservations", func(t *testing.T) {
		require.NoError(t, svc.Remove(context.Background(), 34))
		_, err := svc.Get(context.Background(), 34)
		assert.ErrorIs(t, err, ErrTrainNotFound)
	})

	t.Run("missing train", func(t *testing.T) {
		assert.ErrorIs(t, svc.Remove(context.Background(), 404), ErrTrainNotFound)
	})
}
