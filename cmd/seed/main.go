package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"vehiclerent/internal/config"
	"vehiclerent/internal/database"
	"vehiclerent/internal/domain"
	"vehiclerent/internal/modules/alert"
	"vehiclerent/internal/modules/booking"
	"vehiclerent/internal/modules/codegen"
	"vehiclerent/internal/notification"
	"vehiclerent/internal/pkg/codes"
	"vehiclerent/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	for _, table := range []string{"alerts", "reviews", "bookings", "counters", "vehicles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s failed: %v", table, err)
		}
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	vehicles := repository.NewVehicleRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")
	newUser := func(email, password, name string, role domain.UserRole) *domain.User {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		u := &domain.User{
			Email:              email,
			PasswordHash:       string(hash),
			Name:               name,
			Role:               role,
			VerificationStatus: domain.VerificationVerified,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create %s: %v", email, err)
		}
		return u
	}

	newUser("admin@vehiclerent.local", "admin123", "Administrator", domain.RoleAdmin)
	log.Println("Admin created: admin@vehiclerent.local / admin123")

	owners := make([]*domain.User, 0, 2)
	for i := 1; i <= 2; i++ {
		owners = append(owners, newUser(fmt.Sprintf("owner%d@vehiclerent.local", i), "owner123", fmt.Sprintf("Owner %d", i), domain.RoleOwner))
	}

	customers := make([]*domain.User, 0, 3)
	for i := 1; i <= 3; i++ {
		customers = append(customers, newUser(fmt.Sprintf("customer%d@vehiclerent.local", i), "customer123", fmt.Sprintf("Customer %d", i), domain.RoleCustomer))
	}

	// ================== VEHICLES ==================
	log.Println("Creating vehicles...")
	models := [][2]string{{"Toyota", "Axio"}, {"Suzuki", "Alto"}, {"Honda", "Vezel"}, {"Nissan", "Leaf"}, {"Mazda", "Demio"}}
	fleet := make([]*domain.Vehicle, 0, len(models))
	for i, m := range models {
		v := &domain.Vehicle{
			OwnerID:     owners[i%len(owners)].ID,
			Make:        m[0],
			Model:       m[1],
			PlateNumber: fmt.Sprintf("CA-%04d", 1000+i),
			PricePerDay: float64(40 + 10*rand.IntN(6)),
		}
		if err := vehicles.Create(ctx, v); err != nil {
			log.Fatalf("create vehicle: %v", err)
		}
		fleet = append(fleet, v)
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")
	seq := repository.NewSequenceRepository(db)
	allocator := codegen.NewAllocator(codes.PrefixBooking, codegen.NewSource(cfg.SequenceStrategy, seq, "bookings", "booking_code"), codegen.Options{
		MaxAttempts: cfg.AllocMaxAttempts,
		Backoff:     codegen.RandomBackoff(cfg.AllocMaxBackoff),
		IsConflict:  repository.IsCodeConflict,
	})
	bookings := repository.NewBookingRepository(db, alert.NewHook(nil, vehicles))
	svc := booking.NewService(bookings, vehicles, users, allocator, notification.LogMailer{}, booking.Options{
		LockVehicle: cfg.VehicleLockOnBook,
	})

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i, c := range customers {
		start := today.AddDate(0, 0, 1+rand.IntN(10))
		end := start.AddDate(0, 0, 1+rand.IntN(5))
		b, err := svc.Create(ctx, c.ID, booking.CreateBookingRequest{
			VehicleID:        fleet[i].ID,
			BookingStartDate: booking.Date{Time: start},
			BookingEndDate:   booking.Date{Time: end},
			StartLocation:    "Colombo Fort",
			EndLocation:      "Kandy",
		})
		if err != nil {
			log.Fatalf("create booking: %v", err)
		}
		log.Printf("Booking %s: %s %s, %s..%s, %.2f", b.BookingCode, fleet[i].Make, fleet[i].Model,
			start.Format(time.DateOnly), end.Format(time.DateOnly), b.TotalPrice)
	}

	svc.WaitMail()
	log.Println("Seed completed")
}
