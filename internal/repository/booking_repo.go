package repository

import (
	"context"
	"errors"
	"time"

	"vehiclerent/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingHook observes every persisted booking mutation. The After* methods
// run inside the mutation's transaction; Committed runs once it has been
// committed and receives whatever alerts the transaction produced.
type BookingHook interface {
	AfterCreate(ctx context.Context, tx *gorm.DB, created *domain.Booking) (*domain.Alert, error)
	AfterSave(ctx context.Context, tx *gorm.DB, before, after *domain.Booking) (*domain.Alert, error)
	AfterUpdate(ctx context.Context, tx *gorm.DB, before *domain.Booking, upd BookingUpdate, returned *domain.Booking) (*domain.Alert, error)
	Committed(ctx context.Context, alerts []domain.Alert)
}

// BookingFilter targets a single booking, optionally only while it still has
// the expected status.
type BookingFilter struct {
	ID         uuid.UUID
	WithStatus *domain.BookingStatus
}

// BookingUpdate is the payload of an atomic conditional update.
type BookingUpdate struct {
	Status *domain.BookingStatus
	Fields map[string]any

	// VehicleStatus, when set, is written to the booking's vehicle in the same transaction.
	VehicleStatus *domain.VehicleStatus
}

// ImpliedStatus is the status the update writes, whether it arrives through
// Status or as a raw booking_status column in Fields. Status wins when both are set.
func (u BookingUpdate) ImpliedStatus() (domain.BookingStatus, bool) {
	switch v := u.columns()["booking_status"].(type) {
	case domain.BookingStatus:
		return v, true
	case *domain.BookingStatus:
		if v != nil {
			return *v, true
		}
	case string:
		return domain.BookingStatus(v), true
	}
	return "", false
}

func (u BookingUpdate) columns() map[string]any {
	out := make(map[string]any, len(u.Fields)+1)
	for k, v := range u.Fields {
		out[k] = v
	}
	if u.Status != nil {
		out["booking_status"] = *u.Status
	}
	return out
}

type WriteOptions struct {
	// VehicleStatus, when set, is written to the booked vehicle in the same transaction.
	VehicleStatus *domain.VehicleStatus
}

type BookingRepository struct {
	db   *gorm.DB
	hook BookingHook
}

func NewBookingRepository(db *gorm.DB, hook BookingHook) *BookingRepository {
	return &BookingRepository{db: db, hook: hook}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking, opts WriteOptions) error {
	var alerts []domain.Alert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alerts = alerts[:0]
		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return err
		}
		if opts.VehicleStatus != nil {
			if err := updateVehicleStatus(tx, b.VehicleID, *opts.VehicleStatus); err != nil {
				return err
			}
		}
		if r.hook == nil {
			return nil
		}
		a, err := r.hook.AfterCreate(ctx, tx, b)
		if err != nil {
			return err
		}
		alerts = appendAlert(alerts, a)
		return nil
	})
	if err != nil {
		return err
	}
	r.committed(ctx, alerts)
	return nil
}

// Save persists the full document. Records that do not exist yet go through
// Create, so a brand-new booking never produces a status-change alert.
func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking, opts WriteOptions) error {
	if b.ID == uuid.Nil {
		return r.Create(ctx, b, opts)
	}

	var alerts []domain.Alert
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alerts = alerts[:0]
		var before domain.Booking
		err := tx.Where("id = ?", b.ID).First(&before).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(b).Error; err != nil {
			return err
		}
		if opts.VehicleStatus != nil {
			if err := updateVehicleStatus(tx, b.VehicleID, *opts.VehicleStatus); err != nil {
				return err
			}
		}
		if r.hook == nil {
			return nil
		}
		a, err := r.hook.AfterSave(ctx, tx, &before, b)
		if err != nil {
			return err
		}
		alerts = appendAlert(alerts, a)
		return nil
	})
	if err != nil {
		return err
	}
	if created {
		return r.Create(ctx, b, opts)
	}
	r.committed(ctx, alerts)
	return nil
}

// UpdateWhere applies an atomic conditional update without loading the
// document into the caller first. With returnNew it returns the post-update
// row, otherwise the pre-update one. ErrNotFound means no such booking,
// ErrConditionFailed means the booking exists but no longer matches.
func (r *BookingRepository) UpdateWhere(ctx context.Context, f BookingFilter, upd BookingUpdate, returnNew bool) (*domain.Booking, error) {
	var (
		result *domain.Booking
		alerts []domain.Alert
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alerts = alerts[:0]
		var before domain.Booking
		if err := tx.Where("id = ?", f.ID).First(&before).Error; err != nil {
			return err
		}

		q := tx.Model(&domain.Booking{}).Where("id = ?", f.ID)
		if f.WithStatus != nil {
			q = q.Where("booking_status = ?", *f.WithStatus)
		}
		res := q.Updates(upd.columns())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConditionFailed
		}

		if upd.VehicleStatus != nil {
			if err := updateVehicleStatus(tx, before.VehicleID, *upd.VehicleStatus); err != nil {
				return err
			}
		}

		var returned *domain.Booking
		if returnNew {
			var after domain.Booking
			if err := tx.Where("id = ?", f.ID).First(&after).Error; err != nil {
				return err
			}
			returned = &after
			result = &after
		} else {
			prev := before
			result = &prev
		}

		if r.hook == nil {
			return nil
		}
		a, err := r.hook.AfterUpdate(ctx, tx, &before, upd, returned)
		if err != nil {
			return err
		}
		alerts = appendAlert(alerts, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.committed(ctx, alerts)
	return result, nil
}

// Delete removes the booking and, when vehicleStatus is set, writes it to the
// booking's vehicle in the same transaction. A release to available is skipped
// while another active booking still holds the vehicle.
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID, vehicleStatus *domain.VehicleStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Booking{}, "id = ?", id).Error; err != nil {
			return err
		}
		if vehicleStatus == nil {
			return nil
		}
		if *vehicleStatus == domain.VehicleAvailable {
			held, err := vehicleHeld(tx, b.VehicleID, id)
			if err != nil || held {
				return err
			}
		}
		return updateVehicleStatus(tx, b.VehicleID, *vehicleStatus)
	})
}

// vehicleHeld reports whether a pending or confirmed booking other than
// exclude exists for the vehicle.
func vehicleHeld(tx *gorm.DB, vehicleID int64, exclude uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&domain.Booking{}).
		Where("vehicle_id = ? AND id <> ?", vehicleID, exclude).
		Where("booking_status IN ?", []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed}).
		Count(&count).Error
	return count > 0, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Preload("Vehicle").Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ExistsActive(ctx context.Context, vehicleID, customerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("vehicle_id = ? AND customer_id = ?", vehicleID, customerID).
		Where("booking_status IN ?", []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed}).
		Count(&count).Error
	return count > 0, err
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Booking, error) {
	limit, offset = page(limit, offset)
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	limit, offset = page(limit, offset)
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Joins("JOIN vehicles v ON v.id = bookings.vehicle_id").
		Where("v.owner_id = ?", ownerID).
		Order("bookings.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

// ListDueToStart returns confirmed bookings whose start date is on or before day.
func (r *BookingRepository) ListDueToStart(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("booking_status = ? AND booking_start_date <= ?", domain.BookingConfirmed, day).
		Order("booking_start_date").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *BookingRepository) committed(ctx context.Context, alerts []domain.Alert) {
	if r.hook != nil && len(alerts) > 0 {
		r.hook.Committed(ctx, alerts)
	}
}

func appendAlert(alerts []domain.Alert, a *domain.Alert) []domain.Alert {
	if a == nil {
		return alerts
	}
	return append(alerts, *a)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
