package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date accepts "2006-01-02" or a full RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

type CreateBookingRequest struct {
	VehicleID        int64  `json:"vehicle_id" binding:"required,gt=0"`
	BookingStartDate Date   `json:"booking_start_date"`
	BookingEndDate   Date   `json:"booking_end_date"`
	StartLocation    string `json:"start_location" binding:"required"`
	EndLocation      string `json:"end_location" binding:"required"`
}

// UpdateBookingRequest carries only the fields a customer may edit.
type UpdateBookingRequest struct {
	BookingStartDate *Date   `json:"booking_start_date"`
	BookingEndDate   *Date   `json:"booking_end_date"`
	StartLocation    *string `json:"start_location"`
	EndLocation      *string `json:"end_location"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SettleRequest struct {
	AgreedMileage *float64 `json:"agreed_mileage" binding:"omitempty,gte=0"`
	StartOdometer float64  `json:"start_odometer" binding:"gte=0"`
	EndOdometer   float64  `json:"end_odometer" binding:"gte=0"`
	RatePerKm     *float64 `json:"rate_per_km" binding:"omitempty,gte=0"`
	// Complete moves an ongoing booking to completed in the same write.
	Complete bool `json:"complete"`
}

type Actor struct {
	ID   int64
	Role string
}
