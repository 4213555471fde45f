package main

import (
	"context"
	"log"
	"time"

	"vehiclerent/internal/config"
	"vehiclerent/internal/database"
	"vehiclerent/internal/modules/alert"
	"vehiclerent/internal/modules/booking"
	"vehiclerent/internal/repository"
)

// One pass of the booking auto-start job, for deployments that drive it from cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	vehicles := repository.NewVehicleRepository(db)
	bookings := repository.NewBookingRepository(db, alert.NewHook(nil, vehicles))
	svc := booking.NewService(bookings, vehicles, repository.NewUserRepository(db), nil, nil, booking.Options{
		LockVehicle: cfg.VehicleLockOnBook,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := svc.StartDue(ctx)
	if err != nil {
		log.Fatalf("autostart failed after %d booking(s): %v", n, err)
	}
	log.Printf("autostart completed: started=%d", n)
}
