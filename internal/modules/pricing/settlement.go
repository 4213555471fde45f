package pricing

import "math"

type Settlement struct {
	AgreedMileage    float64 `json:"agreed_mileage"`
	StartOdometer    float64 `json:"start_odometer"`
	EndOdometer      float64 `json:"end_odometer"`
	TotalMileageUsed float64 `json:"total_mileage_used"`
	ExtraMileage     float64 `json:"extra_mileage"`
	RatePerKm        float64 `json:"rate_per_km"`
	ExtraCharge      float64 `json:"extra_charge"`
}

// Settle recomputes the mileage figures from scratch, so repeated calls with
// corrected readings replace rather than accumulate.
func Settle(agreedMileage, startOdometer, endOdometer, ratePerKm float64) (Settlement, error) {
	if agreedMileage < 0 || startOdometer < 0 || endOdometer < 0 || ratePerKm < 0 {
		return Settlement{}, invalid(ErrNegativeReading)
	}
	if endOdometer < startOdometer {
		return Settlement{}, invalid(ErrOdometerRegression)
	}

	used := endOdometer - startOdometer
	extra := math.Max(0, used-agreedMileage)
	return Settlement{
		AgreedMileage:    agreedMileage,
		StartOdometer:    startOdometer,
		EndOdometer:      endOdometer,
		TotalMileageUsed: used,
		ExtraMileage:     extra,
		RatePerKm:        ratePerKm,
		ExtraCharge:      math.Round(extra*ratePerKm*100) / 100,
	}, nil
}
