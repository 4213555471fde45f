// Package server assembles repositories, services and HTTP routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vehiclerent/internal/config"
	"vehiclerent/internal/jobs"
	"vehiclerent/internal/middleware"
	"vehiclerent/internal/modules/alert"
	"vehiclerent/internal/modules/auth"
	"vehiclerent/internal/modules/booking"
	"vehiclerent/internal/modules/codegen"
	"vehiclerent/internal/modules/review"
	"vehiclerent/internal/modules/vehicle"
	"vehiclerent/internal/notification"
	"vehiclerent/internal/pkg/codes"
	jwtsvc "vehiclerent/internal/pkg/jwt"
	"vehiclerent/internal/repository"
)

type App struct {
	Router    *gin.Engine
	JWT       *jwtsvc.Service
	Hub       *alert.Hub
	Bookings  *booking.Service
	Scheduler *jobs.Scheduler
}

// Options overrides collaborators that tests replace.
type Options struct {
	Mailer notification.Mailer
	Now    func() time.Time
}

func New(cfg *config.Config, db *gorm.DB, opts Options) (*App, error) {
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	hub := alert.NewHub()

	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	bookingRepo := repository.NewBookingRepository(db, alert.NewHook(hub, vehicleRepo))

	allocOpts := codegen.Options{
		MaxAttempts: cfg.AllocMaxAttempts,
		Backoff:     codegen.RandomBackoff(cfg.AllocMaxBackoff),
		IsConflict:  repository.IsCodeConflict,
		Now:         opts.Now,
	}
	bookingCodes := codegen.NewAllocator(codes.PrefixBooking, codegen.NewSource(cfg.SequenceStrategy, seqRepo, "bookings", "booking_code"), allocOpts)
	reviewCodes := codegen.NewAllocator(codes.PrefixReview, codegen.NewSource(cfg.SequenceStrategy, seqRepo, "reviews", "review_code"), allocOpts)

	mailer := opts.Mailer
	if mailer == nil {
		m, err := newMailer(cfg)
		if err != nil {
			return nil, err
		}
		mailer = m
	}

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	vehicleHandler := vehicle.NewHandler(vehicle.NewService(vehicleRepo))
	alertHandler := alert.NewHandler(alertRepo, hub, j)

	bookingService := booking.NewService(bookingRepo, vehicleRepo, userRepo, bookingCodes, mailer, booking.Options{
		LockVehicle: cfg.VehicleLockOnBook,
		Now:         opts.Now,
	})
	bookingHandler := booking.NewHandler(bookingService)
	reviewHandler := review.NewHandler(review.NewService(reviewRepo, bookingRepo, reviewCodes))

	scheduler, err := jobs.New(bookingService, cfg.AutoStartInterval)
	if err != nil {
		return nil, err
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// public
		authHandler.RegisterPublicRoutes(api)
		vehicleHandler.RegisterPublicRoutes(api)
		alertHandler.RegisterPublicRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			vehicleHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			alertHandler.RegisterRoutes(protected)
		}
		reviewHandler.RegisterRoutes(api, protected)
	}

	return &App{
		Router:    r,
		JWT:       j,
		Hub:       hub,
		Bookings:  bookingService,
		Scheduler: scheduler,
	}, nil
}

func newMailer(cfg *config.Config) (notification.Mailer, error) {
	if cfg.SMTPHost == "" {
		return notification.LogMailer{}, nil
	}
	return notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}
