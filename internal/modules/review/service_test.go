package review

import (
	"context"
	"errors"
	"testing"

	"vehiclerent/internal/domain"
	"vehiclerent/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return m.Called(ctx, rv).Error(0)
}

func (m *mockReviewRepo) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) ListByVehicle(ctx context.Context, vehicleID int64, limit, offset int) ([]domain.Review, error) {
	args := m.Called(ctx, vehicleID, limit, offset)
	return args.Get(0).([]domain.Review), args.Error(1)
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type oneShotCodes struct{ code string }

func (o oneShotCodes) Create(ctx context.Context, persist func(ctx context.Context, code string) error) (string, error) {
	return o.code, persist(ctx, o.code)
}

func setup(status domain.BookingStatus) (*Service, *mockReviewRepo, *mockBookings, uuid.UUID) {
	reviews := new(mockReviewRepo)
	bookings := new(mockBookings)
	id := uuid.New()
	bookings.On("GetByID", mock.Anything, id).Return(&domain.Booking{ID: id, VehicleID: 4, CustomerID: 2, BookingStatus: status}, nil)
	return NewService(reviews, bookings, oneShotCodes{"REVIEW-20250310-000001"}), reviews, bookings, id
}

func TestCreate_CompletedBooking(t *testing.T) {
	svc, reviews, _, id := setup(domain.BookingCompleted)
	reviews.On("ExistsForBooking", mock.Anything, id).Return(false, nil)
	reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	rv, err := svc.Create(context.Background(), 2, CreateReviewRequest{BookingID: id.String(), Rating: 5, Comment: " great car "})

	require.NoError(t, err)
	assert.Equal(t, "REVIEW-20250310-000001", rv.ReviewCode)
	assert.Equal(t, int64(4), rv.VehicleID)
	assert.Equal(t, "great car", rv.Comment)
}

func TestCreate_Rejections(t *testing.T) {
	svc, _, _, id := setup(domain.BookingOngoing)

	_, err := svc.Create(context.Background(), 2, CreateReviewRequest{BookingID: id.String(), Rating: 9})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Create(context.Background(), 3, CreateReviewRequest{BookingID: id.String(), Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(context.Background(), 2, CreateReviewRequest{BookingID: id.String(), Rating: 4})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestCreate_DuplicateReview(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"sqlite", errors.New("UNIQUE constraint failed: reviews.booking_id")},
		{"postgres", &pgconn.PgError{Code: "23505", ConstraintName: "idx_reviews_booking_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, reviews, _, id := setup(domain.BookingCompleted)
			reviews.On("ExistsForBooking", mock.Anything, id).Return(false, nil)
			reviews.On("Create", mock.Anything, mock.Anything).Return(tt.err).Once()

			_, err := svc.Create(context.Background(), 2, CreateReviewRequest{BookingID: id.String(), Rating: 4})

			assert.ErrorIs(t, err, ErrConflict)
			reviews.AssertNumberOfCalls(t, "Create", 1)
		})
	}
}

func TestCreate_UnknownBooking(t *testing.T) {
	reviews := new(mockReviewRepo)
	bookings := new(mockBookings)
	id := uuid.New()
	bookings.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)
	svc := NewService(reviews, bookings, oneShotCodes{"REVIEW-20250310-000001"})

	_, err := svc.Create(context.Background(), 2, CreateReviewRequest{BookingID: id.String(), Rating: 4})

	assert.ErrorIs(t, err, ErrNotFound)
}
