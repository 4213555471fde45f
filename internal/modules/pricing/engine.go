// Package pricing validates rental date ranges and prices them against a
// vehicle's daily rate. It also settles post-rental mileage.
package pricing

import (
	"math"
	"time"

	"vehiclerent/internal/domain"
)

const day = 24 * time.Hour

type Quote struct {
	DayCount   int     `json:"day_count"`
	TotalPrice float64 `json:"total_price"`
}

// NormalizeDate drops the time of day, keeping the UTC calendar date.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayCount is the number of calendar days between two normalized dates, end exclusive.
func DayCount(start, end time.Time) int {
	return int(math.Round(float64(NormalizeDate(end).Sub(NormalizeDate(start))) / float64(day)))
}

// ValidateDates checks start >= today and end > start after normalization.
func ValidateDates(start, end, now time.Time) error {
	start, end = NormalizeDate(start), NormalizeDate(end)
	if start.Before(NormalizeDate(now)) {
		return invalid(ErrStartInPast)
	}
	if !end.After(start) {
		return invalid(ErrEndNotAfterStart)
	}
	if DayCount(start, end) < 1 {
		return invalid(ErrDayCount)
	}
	return nil
}

// Price computes the quote for a date range without looking at vehicle state.
func Price(pricePerDay float64, start, end time.Time) (Quote, error) {
	if pricePerDay <= 0 || math.IsNaN(pricePerDay) || math.IsInf(pricePerDay, 0) {
		return Quote{}, invalid(ErrNoRate)
	}
	n := DayCount(start, end)
	if n < 1 {
		return Quote{}, invalid(ErrDayCount)
	}
	return Quote{
		DayCount:   n,
		TotalPrice: math.Round(float64(n)*pricePerDay*100) / 100,
	}, nil
}

// PriceBooking validates a new booking request and prices it.
func PriceBooking(v *domain.Vehicle, start, end, now time.Time) (Quote, error) {
	if v == nil || v.Status != domain.VehicleAvailable {
		return Quote{}, invalid(ErrVehicleUnavailable)
	}
	if err := ValidateDates(start, end, now); err != nil {
		return Quote{}, err
	}
	return Price(v.PricePerDay, start, end)
}
