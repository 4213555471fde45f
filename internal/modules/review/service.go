package review

import (
	"context"
	"errors"
	"strings"

	"vehiclerent/internal/domain"
	"vehiclerent/internal/pkg/validator"
	"vehiclerent/internal/repository"

	"github.com/google/uuid"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	ListByVehicle(ctx context.Context, vehicleID int64, limit, offset int) ([]domain.Review, error)
}

type BookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type CodeAllocator interface {
	Create(ctx context.Context, persist func(ctx context.Context, code string) error) (string, error)
}

type Service struct {
	reviews  ReviewRepository
	bookings BookingReader
	codes    CodeAllocator
}

func NewService(reviews ReviewRepository, bookings BookingReader, codes CodeAllocator) *Service {
	return &Service{reviews: reviews, bookings: bookings, codes: codes}
}

// Create stores one review per completed booking, written by the booking's customer.
func (s *Service) Create(ctx context.Context, customerID int64, req CreateReviewRequest) (*domain.Review, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrInvalidRequest
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, ErrInvalidRequest
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrNotFound
	}
	if b.BookingStatus != domain.BookingCompleted {
		return nil, ErrReviewNotAllowed
	}

	exists, err := s.reviews.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	rv := &domain.Review{
		BookingID:  b.ID,
		VehicleID:  b.VehicleID,
		CustomerID: customerID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	}
	_, err = s.codes.Create(ctx, func(ctx context.Context, code string) error {
		rv.ReviewCode = code
		return s.reviews.Create(ctx, rv)
	})
	if err != nil {
		// a concurrent review of the same booking won
		if repository.IsUniqueViolation(err) && !repository.IsCodeConflict(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListByVehicle(ctx context.Context, vehicleID int64, limit, offset int) ([]domain.Review, error) {
	if vehicleID <= 0 {
		return nil, ErrInvalidRequest
	}
	return s.reviews.ListByVehicle(ctx, vehicleID, limit, offset)
}
