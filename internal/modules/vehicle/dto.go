package vehicle

type CreateVehicleRequest struct {
	Make        string  `json:"make" validate:"required,max=64"`
	Model       string  `json:"model" validate:"required,max=64"`
	PlateNumber string  `json:"plate_number" validate:"required,max=32"`
	PricePerDay float64 `json:"price_per_day" validate:"gt=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
