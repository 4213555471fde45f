// Package alert derives booking alerts from persisted mutations and serves
// them over HTTP and websocket.
package alert

import (
	"fmt"

	"vehiclerent/internal/domain"
)

type Change struct {
	From domain.BookingStatus
	To   domain.BookingStatus
}

// DetectStatusChange is the only place that decides whether a mutation is
// worth an alert. Both write paths call it.
func DetectStatusChange(from, to domain.BookingStatus) (Change, bool) {
	if from == to || to == "" {
		return Change{}, false
	}
	return Change{From: from, To: to}, true
}

func CreatedMessage(ref string) string {
	return fmt.Sprintf("Booking %s has been created", ref)
}

func StatusChangedMessage(ref string, c Change) string {
	return fmt.Sprintf("Booking %s status changed from '%s' to '%s'", ref, c.From, c.To)
}

func newAlert(b *domain.Booking, message string) *domain.Alert {
	id := b.ID
	customerID := b.CustomerID
	vehicleID := b.VehicleID
	return &domain.Alert{
		BookingID:  &id,
		CustomerID: &customerID,
		VehicleID:  &vehicleID,
		Message:    message,
	}
}

func CreatedAlert(b *domain.Booking) *domain.Alert {
	return newAlert(b, CreatedMessage(b.Ref()))
}

func StatusAlert(b *domain.Booking, c Change) *domain.Alert {
	return newAlert(b, StatusChangedMessage(b.Ref(), c))
}
