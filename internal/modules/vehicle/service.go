package vehicle

import (
	"context"
	"errors"
	"strings"

	"vehiclerent/internal/domain"
	"vehiclerent/internal/pkg/validator"
	"vehiclerent/internal/repository"
)

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Vehicle, error)
	List(ctx context.Context, f repository.VehicleFilters) ([]domain.Vehicle, int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.VehicleStatus) error
}

type Service struct {
	vehicles VehicleRepository
}

func NewService(vehicles VehicleRepository) *Service {
	return &Service{vehicles: vehicles}
}

func (s *Service) Create(ctx context.Context, ownerID int64, req CreateVehicleRequest) (*domain.Vehicle, error) {
	req.Make = strings.TrimSpace(req.Make)
	req.Model = strings.TrimSpace(req.Model)
	req.PlateNumber = strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	if errs := validator.Validate(req); errs != nil {
		return nil, ErrInvalidRequest
	}

	v := &domain.Vehicle{
		OwnerID:     ownerID,
		Make:        req.Make,
		Model:       req.Model,
		PlateNumber: req.PlateNumber,
		PricePerDay: req.PricePerDay,
		Status:      domain.VehicleAvailable,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPlateTaken
		}
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, f repository.VehicleFilters) ([]domain.Vehicle, int64, error) {
	return s.vehicles.List(ctx, f)
}

func (s *Service) ListMine(ctx context.Context, ownerID int64) ([]domain.Vehicle, error) {
	return s.vehicles.ListByOwner(ctx, ownerID)
}

// SetStatus lets an owner take their own vehicle off the market or back on it.
// Vehicles of other owners are reported as missing.
func (s *Service) SetStatus(ctx context.Context, ownerID, id int64, status string) (*domain.Vehicle, error) {
	st := domain.VehicleStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.IsValid() {
		return nil, ErrInvalidStatus
	}

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	if v.Status == st {
		return v, nil
	}
	if err := s.vehicles.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	v.Status = st
	return v, nil
}
