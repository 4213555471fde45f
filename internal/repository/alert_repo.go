package repository

import (
	"context"
	"errors"
	"strings"

	"vehiclerent/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("alert message must not be empty")

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	if strings.TrimSpace(a.Message) == "" {
		return ErrEmptyMessage
	}
	a.IsRead = false
	return r.db.WithContext(ctx).Create(a).Error
}

// visibleTo matches alerts addressed to the customer or raised on one of the user's vehicles.
func visibleTo(db *gorm.DB, userID int64) *gorm.DB {
	return db.Where(
		"alerts.customer_id = ? OR alerts.vehicle_id IN (?)",
		userID,
		db.Session(&gorm.Session{NewDB: true}).Model(&domain.Vehicle{}).Select("id").Where("owner_id = ?", userID),
	)
}

func (r *AlertRepository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]domain.Alert, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := visibleTo(r.db.WithContext(ctx).Model(&domain.Alert{}), userID)
	if unreadOnly {
		q = q.Where("alerts.is_read = ?", false)
	}
	var out []domain.Alert
	err := q.Order("alerts.created_at DESC").Order("alerts.id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *AlertRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := visibleTo(r.db.WithContext(ctx).Model(&domain.Alert{}), userID).
		Where("alerts.is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *AlertRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Alert, error) {
	var out []domain.Alert
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *AlertRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	res := visibleTo(r.db.WithContext(ctx).Model(&domain.Alert{}), userID).
		Where("alerts.id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AlertRepository) MarkAllAsRead(ctx context.Context, userID int64) error {
	return visibleTo(r.db.WithContext(ctx).Model(&domain.Alert{}), userID).
		Where("alerts.is_read = ?", false).
		Update("is_read", true).Error
}
