package domain

import "time"

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleUnavailable VehicleStatus = "unavailable"
)

func (s VehicleStatus) IsValid() bool {
	return s == VehicleAvailable || s == VehicleUnavailable
}

type Vehicle struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id" gorm:"not null;index"`
	Make        string        `json:"make" gorm:"not null"`
	Model       string        `json:"model" gorm:"not null"`
	PlateNumber string        `json:"plate_number" gorm:"size:32;uniqueIndex;not null"`
	PricePerDay float64       `json:"price_per_day" gorm:"not null;default:0"`
	Status      VehicleStatus `json:"status" gorm:"size:16;not null;default:available"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
