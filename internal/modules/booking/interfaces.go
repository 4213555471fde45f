package booking

import (
	"context"
	"time"

	"vehiclerent/internal/domain"
	"vehiclerent/internal/notification"
	"vehiclerent/internal/repository"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking, opts repository.WriteOptions) error
	Save(ctx context.Context, b *domain.Booking, opts repository.WriteOptions) error
	UpdateWhere(ctx context.Context, f repository.BookingFilter, upd repository.BookingUpdate, returnNew bool) (*domain.Booking, error)
	Delete(ctx context.Context, id uuid.UUID, vehicleStatus *domain.VehicleStatus) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ExistsActive(ctx context.Context, vehicleID, customerID int64) (bool, error)
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error)
	ListDueToStart(ctx context.Context, day time.Time) ([]uuid.UUID, error)
}

type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// CodeAllocator hands persist a fresh booking code per attempt.
type CodeAllocator interface {
	Create(ctx context.Context, persist func(ctx context.Context, code string) error) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, msg *notification.Message) error
}
