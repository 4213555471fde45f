package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         int64     `json:"id"`
	ReviewCode string    `json:"review_code" gorm:"size:32;uniqueIndex;not null"`
	BookingID  uuid.UUID `json:"booking_id" gorm:"type:uuid;uniqueIndex;not null"`
	VehicleID  int64     `json:"vehicle_id" gorm:"not null;index"`
	CustomerID int64     `json:"customer_id" gorm:"not null"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
