package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingOngoing   BookingStatus = "ongoing"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus rejects anything outside the closed set of statuses.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return st, nil
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingOngoing, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// IsActive reports whether the booking still holds its vehicle for the customer.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// CanTransitionTo encodes pending → confirmed → ongoing → completed,
// with cancelled reachable from pending or confirmed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingOngoing || next == BookingCancelled
	case BookingOngoing:
		return next == BookingCompleted
	case BookingCompleted, BookingCancelled:
		return false
	}
	return false
}

func (s BookingStatus) String() string { return string(s) }

type Booking struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BookingCode string    `json:"booking_code" gorm:"size:32;uniqueIndex;not null"`
	VehicleID   int64     `json:"vehicle_id" gorm:"not null;index:idx_bookings_vehicle_customer"`
	CustomerID  int64     `json:"customer_id" gorm:"not null;index:idx_bookings_vehicle_customer"`

	BookingStartDate time.Time     `json:"booking_start_date" gorm:"not null"`
	BookingEndDate   time.Time     `json:"booking_end_date" gorm:"not null"`
	TotalPrice       float64       `json:"total_price" gorm:"not null"`
	BookingStatus    BookingStatus `json:"booking_status" gorm:"size:16;not null;default:pending;index"`

	StartLocation string `json:"start_location" gorm:"not null"`
	EndLocation   string `json:"end_location" gorm:"not null"`

	// settlement, filled during or after the rental
	AgreedMileage    *float64 `json:"agreed_mileage,omitempty"`
	StartOdometer    *float64 `json:"start_odometer,omitempty"`
	EndOdometer      *float64 `json:"end_odometer,omitempty"`
	TotalMileageUsed *float64 `json:"total_mileage_used,omitempty"`
	ExtraMileage     *float64 `json:"extra_mileage,omitempty"`
	RatePerKm        *float64 `json:"rate_per_km,omitempty"`
	ExtraCharge      *float64 `json:"extra_charge,omitempty"`

	HandoverRequest bool `json:"handover_request" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Vehicle  *Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Customer *User    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (b *Booking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.BookingStatus == "" {
		b.BookingStatus = BookingPending
	}
	return nil
}

// Ref is the human-facing reference used in alert messages.
func (b *Booking) Ref() string {
	if b.BookingCode != "" {
		return b.BookingCode
	}
	return b.ID.String()
}
