package alert

import (
	"context"
	"log"

	"vehiclerent/internal/domain"
	"vehiclerent/internal/repository"

	"gorm.io/gorm"
)

type Publisher interface {
	SendToUser(userID int64, event *Event) bool
}

type OwnerLookup interface {
	GetOwnerID(ctx context.Context, vehicleID int64) (int64, error)
}

// Hook writes booking alerts inside the mutation's transaction and pushes
// them to connected clients once the transaction has committed.
type Hook struct {
	publisher Publisher
	owners    OwnerLookup
}

var _ repository.BookingHook = (*Hook)(nil)

func NewHook(publisher Publisher, owners OwnerLookup) *Hook {
	return &Hook{publisher: publisher, owners: owners}
}

func (h *Hook) AfterCreate(ctx context.Context, tx *gorm.DB, created *domain.Booking) (*domain.Alert, error) {
	return h.record(ctx, tx, CreatedAlert(created))
}

func (h *Hook) AfterSave(ctx context.Context, tx *gorm.DB, before, after *domain.Booking) (*domain.Alert, error) {
	change, ok := DetectStatusChange(before.BookingStatus, after.BookingStatus)
	if !ok {
		return nil, nil
	}
	return h.record(ctx, tx, StatusAlert(after, change))
}

// AfterUpdate compares the pre-read status with the returned document when
// the caller asked for it, otherwise with the status the payload implies.
func (h *Hook) AfterUpdate(ctx context.Context, tx *gorm.DB, before *domain.Booking, upd repository.BookingUpdate, returned *domain.Booking) (*domain.Alert, error) {
	subject := before
	next, ok := upd.ImpliedStatus()
	if returned != nil {
		subject = returned
		next, ok = returned.BookingStatus, true
	}
	if !ok {
		return nil, nil
	}

	change, ok := DetectStatusChange(before.BookingStatus, next)
	if !ok {
		return nil, nil
	}
	return h.record(ctx, tx, StatusAlert(subject, change))
}

func (h *Hook) record(ctx context.Context, tx *gorm.DB, a *domain.Alert) (*domain.Alert, error) {
	if err := repository.NewAlertRepository(tx).Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (h *Hook) Committed(ctx context.Context, alerts []domain.Alert) {
	if h.publisher == nil {
		return
	}
	for i := range alerts {
		a := &alerts[i]
		event := NewAlertEvent(a)
		if a.CustomerID != nil {
			h.publisher.SendToUser(*a.CustomerID, event)
		}
		if a.VehicleID == nil || h.owners == nil {
			continue
		}
		ownerID, err := h.owners.GetOwnerID(ctx, *a.VehicleID)
		if err != nil {
			log.Printf("alert_publish_failed alert_id=%d vehicle_id=%d error=%v", a.ID, *a.VehicleID, err)
			continue
		}
		if a.CustomerID == nil || ownerID != *a.CustomerID {
			h.publisher.SendToUser(ownerID, event)
		}
	}
}
