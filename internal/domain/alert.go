package domain

import (
	"time"

	"github.com/google/uuid"
)

// Alert is append-only; only IsRead ever changes after insert.
type Alert struct {
	ID         int64      `json:"id"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	CustomerID *int64     `json:"customer_id,omitempty" gorm:"index"`
	VehicleID  *int64     `json:"vehicle_id,omitempty" gorm:"index"`
	Message    string     `json:"message" gorm:"type:text;not null"`
	IsRead     bool       `json:"is_read" gorm:"not null;default:false"`
	CreatedAt  time.Time  `json:"created_at"`
}
