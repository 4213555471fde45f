package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"vehiclerent/internal/database"
	"vehiclerent/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectWith(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestUniqueViolation(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		target   string
		unique   bool
		codeLike bool
	}{
		{"nil", nil, "", false, false},
		{"other", errors.New("connection reset"), "", false, false},
		{"postgres code column", &pgconn.PgError{Code: "23505", ConstraintName: "idx_bookings_booking_code"}, "idx_bookings_booking_code", true, true},
		{"postgres booking id", fmt.Errorf("create review: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_reviews_booking_id"}), "idx_reviews_booking_id", true, false},
		{"postgres other code", &pgconn.PgError{Code: "23503"}, "", false, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "", true, true},
		{"sqlite code column", errors.New("constraint failed: UNIQUE constraint failed: bookings.booking_code (2067)"), "bookings.booking_code", true, true},
		{"sqlite booking id", errors.New("UNIQUE constraint failed: reviews.booking_id"), "reviews.booking_id", true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, ok := UniqueViolation(tc.err)
			assert.Equal(t, tc.unique, ok)
			assert.Equal(t, tc.target, target)
			assert.Equal(t, tc.codeLike, IsCodeConflict(tc.err))
		})
	}
}

func TestConnect_KeepsDriverErrors(t *testing.T) {
	db := testDB(t)
	assert.False(t, db.Config.TranslateError)

	ctx := context.Background()
	repo := NewSequenceRepository(db)
	_, err := repo.Increment(ctx, "REVIEW-20250301")
	require.NoError(t, err)

	err = db.WithContext(ctx).Create(&domain.Counter{Name: "REVIEW-20250301", Value: 9}).Error
	require.Error(t, err)
	assert.NotErrorIs(t, err, gorm.ErrDuplicatedKey)
	target, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.NotEmpty(t, target)
}

func TestSequenceRepository_Increment(t *testing.T) {
	repo := NewSequenceRepository(testDB(t))
	ctx := context.Background()

	cur, err := repo.Current(ctx, "BOOK-20250301")
	require.NoError(t, err)
	assert.Zero(t, cur)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Increment(ctx, "BOOK-20250301")
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	cur, err = repo.Current(ctx, "BOOK-20250301")
	require.NoError(t, err)
	assert.Equal(t, int64(n), cur)

	other, err := repo.Increment(ctx, "BOOK-20250302")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestSequenceRepository_LastCode(t *testing.T) {
	db := testDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	last, err := repo.LastCode(ctx, "bookings", "booking_code", "BOOK-20250301-")
	require.NoError(t, err)
	assert.Empty(t, last)

	for _, code := range []string{"BOOK-20250301-000002", "BOOK-20250301-000010", "BOOK-20250302-000099"} {
		require.NoError(t, db.Create(&domain.Booking{BookingCode: code, VehicleID: 1, CustomerID: 1, StartLocation: "a", EndLocation: "b"}).Error)
	}

	last, err = repo.LastCode(ctx, "bookings", "booking_code", "BOOK-20250301-")
	require.NoError(t, err)
	assert.Equal(t, "BOOK-20250301-000010", last)
}

func TestVehicleRepository_List(t *testing.T) {
	repo := NewVehicleRepository(testDB(t))
	ctx := context.Background()

	for i, price := range []float64{30, 60, 90} {
		require.NoError(t, repo.Create(ctx, &domain.Vehicle{OwnerID: 1, Make: "Kia", Model: "Picanto", PlateNumber: fmt.Sprintf("KP-%d", i), PricePerDay: price}))
	}
	require.NoError(t, repo.UpdateStatus(ctx, 3, domain.VehicleUnavailable))

	items, total, err := repo.List(ctx, VehicleFilters{Status: domain.VehicleAvailable, MinPrice: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, 60.0, items[0].PricePerDay)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 99, domain.VehicleAvailable), ErrNotFound)
}

func TestAlertRepository_Visibility(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	vehicles := NewVehicleRepository(db)
	alerts := NewAlertRepository(db)

	v := &domain.Vehicle{OwnerID: 10, Make: "Kia", Model: "Rio", PlateNumber: "KR-1", PricePerDay: 40}
	require.NoError(t, vehicles.Create(ctx, v))

	customer := int64(20)
	bookingID := uuid.New()
	require.NoError(t, alerts.Create(ctx, &domain.Alert{BookingID: &bookingID, CustomerID: &customer, VehicleID: &v.ID, Message: "Booking X has been created"}))

	for _, user := range []int64{10, 20} {
		items, err := alerts.ListForUser(ctx, user, true, 0)
		require.NoError(t, err)
		assert.Len(t, items, 1, "user %d", user)
	}
	items, err := alerts.ListForUser(ctx, 30, false, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, alerts.Create(ctx, &domain.Alert{CustomerID: &customer, Message: "  "}), ErrEmptyMessage)

	require.NoError(t, alerts.MarkAllAsRead(ctx, 20))
	unread, err := alerts.CountUnread(ctx, 20)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
