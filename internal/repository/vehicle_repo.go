package repository

import (
	"context"

	"vehiclerent/internal/domain"

	"gorm.io/gorm"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	if v.Status == "" {
		v.Status = domain.VehicleAvailable
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *VehicleRepository) UpdateStatus(ctx context.Context, id int64, status domain.VehicleStatus) error {
	return updateVehicleStatus(r.db.WithContext(ctx), id, status)
}

func (r *VehicleRepository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	v, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return v.OwnerID, nil
}

func updateVehicleStatus(tx *gorm.DB, id int64, status domain.VehicleStatus) error {
	res := tx.Model(&domain.Vehicle{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type VehicleFilters struct {
	Status   domain.VehicleStatus
	MinPrice float64
	MaxPrice float64
	Limit    int
	Offset   int
}

func (r *VehicleRepository) List(ctx context.Context, f VehicleFilters) ([]domain.Vehicle, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Vehicle{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MinPrice > 0 {
		q = q.Where("price_per_day >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_per_day <= ?", f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := page(f.Limit, f.Offset)
	var out []domain.Vehicle
	err := q.Order("id").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}
