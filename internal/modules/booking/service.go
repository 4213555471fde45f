package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"vehiclerent/internal/domain"
	"vehiclerent/internal/modules/pricing"
	"vehiclerent/internal/notification"
	"vehiclerent/internal/repository"

	"github.com/google/uuid"
)

type Options struct {
	// LockVehicle marks the vehicle unavailable while a booking holds it.
	LockVehicle bool
	Now         func() time.Time
}

// confirmationTimeout bounds a confirmation send once the request has returned.
const confirmationTimeout = 15 * time.Second

type Service struct {
	bookings BookingRepository
	vehicles VehicleRepository
	users    UserRepository
	codes    CodeAllocator
	mailer   Mailer
	lock     bool
	now      func() time.Time
	mail     sync.WaitGroup
}

func NewService(
	bookings BookingRepository,
	vehicles VehicleRepository,
	users UserRepository,
	codes CodeAllocator,
	mailer Mailer,
	opts Options,
) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		bookings: bookings,
		vehicles: vehicles,
		users:    users,
		codes:    codes,
		mailer:   mailer,
		lock:     opts.LockVehicle,
		now:      opts.Now,
	}
}

func (s *Service) Create(ctx context.Context, customerID int64, req CreateBookingRequest) (*domain.Booking, error) {
	vehicle, err := s.vehicles.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, notFound(err, "vehicle")
	}
	customer, err := s.users.GetByID(ctx, customerID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	// self-booking is checked first so owners get the same answer verified or not
	if vehicle.OwnerID == customerID {
		return nil, invalid(ErrSelfBooking)
	}
	if !customer.IsVerified() {
		return nil, invalid(ErrUnverified)
	}
	if req.BookingStartDate.IsZero() || req.BookingEndDate.IsZero() {
		return nil, invalid(ErrDatesRequired)
	}
	startLoc, endLoc := strings.TrimSpace(req.StartLocation), strings.TrimSpace(req.EndLocation)
	if startLoc == "" || endLoc == "" {
		return nil, invalid(ErrLocationRequired)
	}

	active, err := s.bookings.ExistsActive(ctx, vehicle.ID, customerID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, invalid(ErrActiveBookingExists)
	}

	quote, err := pricing.PriceBooking(vehicle, req.BookingStartDate.Time, req.BookingEndDate.Time, s.now())
	if err != nil {
		return nil, pricingError(err)
	}

	b := &domain.Booking{
		VehicleID:        vehicle.ID,
		CustomerID:       customerID,
		BookingStartDate: pricing.NormalizeDate(req.BookingStartDate.Time),
		BookingEndDate:   pricing.NormalizeDate(req.BookingEndDate.Time),
		TotalPrice:       quote.TotalPrice,
		BookingStatus:    domain.BookingPending,
		StartLocation:    startLoc,
		EndLocation:      endLoc,
	}

	var opts repository.WriteOptions
	if s.lock {
		opts.VehicleStatus = statusPtr(domain.VehicleUnavailable)
	}
	if _, err := s.codes.Create(ctx, func(ctx context.Context, code string) error {
		b.BookingCode = code
		return s.bookings.Create(ctx, b, opts)
	}); err != nil {
		return nil, err
	}

	created, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	created.Customer = customer
	s.sendConfirmation(ctx, created)
	return created, nil
}

func (s *Service) sendConfirmation(ctx context.Context, b *domain.Booking) {
	if s.mailer == nil {
		return
	}
	msg, err := notification.RenderBookingConfirmation(b)
	if err != nil {
		log.Printf("booking_confirmation_render_failed booking_id=%s error=%v", b.ID, err)
		return
	}
	id := b.ID
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), confirmationTimeout)
	s.mail.Add(1)
	go func() {
		defer s.mail.Done()
		defer cancel()
		if err := s.mailer.Send(sendCtx, msg); err != nil {
			log.Printf("booking_confirmation_send_failed booking_id=%s to=%s error=%v", id, msg.To, err)
		}
	}()
}

// WaitMail blocks until every queued confirmation email has been handed off.
func (s *Service) WaitMail() {
	s.mail.Wait()
}

// Update edits dates and locations of a pending booking. Changed dates are
// re-priced against the vehicle's current rate.
func (s *Service) Update(ctx context.Context, bookingID uuid.UUID, customerID int64, req UpdateBookingRequest) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking")
	}
	if b.CustomerID != customerID {
		return nil, ErrNotFound
	}
	if b.BookingStatus != domain.BookingPending {
		return nil, invalid(ErrNotEditable)
	}

	start, end := b.BookingStartDate, b.BookingEndDate
	if req.BookingStartDate != nil {
		start = req.BookingStartDate.Time
	}
	if req.BookingEndDate != nil {
		end = req.BookingEndDate.Time
	}
	if req.BookingStartDate != nil || req.BookingEndDate != nil {
		if err := pricing.ValidateDates(start, end, s.now()); err != nil {
			return nil, pricingError(err)
		}
		vehicle, err := s.vehicles.GetByID(ctx, b.VehicleID)
		if err != nil {
			return nil, notFound(err, "vehicle")
		}
		quote, err := pricing.Price(vehicle.PricePerDay, start, end)
		if err != nil {
			return nil, pricingError(err)
		}
		b.BookingStartDate = pricing.NormalizeDate(start)
		b.BookingEndDate = pricing.NormalizeDate(end)
		b.TotalPrice = quote.TotalPrice
		b.Vehicle = vehicle
	}

	if req.StartLocation != nil {
		b.StartLocation = strings.TrimSpace(*req.StartLocation)
	}
	if req.EndLocation != nil {
		b.EndLocation = strings.TrimSpace(*req.EndLocation)
	}
	if b.StartLocation == "" || b.EndLocation == "" {
		return nil, invalid(ErrLocationRequired)
	}

	if err := s.bookings.Save(ctx, b, repository.WriteOptions{}); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the customer's booking. The vehicle goes back on the market
// only when the booking was still holding it.
func (s *Service) Delete(ctx context.Context, bookingID uuid.UUID, customerID int64) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return notFound(err, "booking")
	}
	if b.CustomerID != customerID {
		return ErrNotFound
	}
	var release *domain.VehicleStatus
	if s.lock && b.BookingStatus.IsActive() {
		release = statusPtr(domain.VehicleAvailable)
	}
	if err := s.bookings.Delete(ctx, bookingID, release); err != nil {
		return notFound(err, "booking")
	}
	return nil
}

// ChangeStatus applies an owner or admin transition through the atomic
// conditional update, guarded by the status the caller saw.
func (s *Service) ChangeStatus(ctx context.Context, bookingID uuid.UUID, actor Actor, status string) (*domain.Booking, error) {
	next, err := domain.ParseBookingStatus(status)
	if err != nil {
		return nil, invalid(ErrInvalidStatus)
	}

	b, err := s.managed(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	if !b.BookingStatus.CanTransitionTo(next) {
		return nil, invalid(ErrInvalidTransition)
	}

	current := b.BookingStatus
	upd := repository.BookingUpdate{Status: &next}
	if s.lock && next.IsTerminal() {
		upd.VehicleStatus = statusPtr(domain.VehicleAvailable)
	}
	if _, err := s.bookings.UpdateWhere(ctx, repository.BookingFilter{ID: b.ID, WithStatus: &current}, upd, true); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			// someone else moved the booking first
			return nil, invalid(ErrInvalidTransition)
		}
		return nil, notFound(err, "booking")
	}
	return s.bookings.GetByID(ctx, b.ID)
}

// Settle records odometer readings and recomputes the extra mileage charge.
func (s *Service) Settle(ctx context.Context, bookingID uuid.UUID, actor Actor, req SettleRequest) (*domain.Booking, error) {
	b, err := s.managed(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	if b.BookingStatus != domain.BookingOngoing && b.BookingStatus != domain.BookingCompleted {
		return nil, invalid(ErrNotSettleable)
	}

	agreed := firstOf(req.AgreedMileage, b.AgreedMileage)
	rate := firstOf(req.RatePerKm, b.RatePerKm)
	st, err := pricing.Settle(agreed, req.StartOdometer, req.EndOdometer, rate)
	if err != nil {
		return nil, pricingError(err)
	}

	b.AgreedMileage = &st.AgreedMileage
	b.StartOdometer = &st.StartOdometer
	b.EndOdometer = &st.EndOdometer
	b.TotalMileageUsed = &st.TotalMileageUsed
	b.ExtraMileage = &st.ExtraMileage
	b.RatePerKm = &st.RatePerKm
	b.ExtraCharge = &st.ExtraCharge

	var opts repository.WriteOptions
	if req.Complete && b.BookingStatus == domain.BookingOngoing {
		b.BookingStatus = domain.BookingCompleted
		if s.lock {
			opts.VehicleStatus = statusPtr(domain.VehicleAvailable)
		}
	}
	if err := s.bookings.Save(ctx, b, opts); err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns a booking visible to its customer, the vehicle owner or an admin.
func (s *Service) Get(ctx context.Context, bookingID uuid.UUID, actor Actor) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking")
	}
	if b.CustomerID == actor.ID || manages(b, actor) {
		return b, nil
	}
	return nil, ErrNotFound
}

func (s *Service) ListMine(ctx context.Context, customerID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *Service) ListForOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByOwner(ctx, ownerID, limit, offset)
}

// StartDue moves confirmed bookings whose start date has arrived to ongoing.
// Each row goes through its own guarded update, so a booking another writer
// already moved is skipped and every transition yields one alert.
func (s *Service) StartDue(ctx context.Context) (int, error) {
	today := pricing.NormalizeDate(s.now())
	ids, err := s.bookings.ListDueToStart(ctx, today)
	if err != nil {
		return 0, err
	}

	confirmed, ongoing := domain.BookingConfirmed, domain.BookingOngoing
	started := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return started, err
		}
		_, err := s.bookings.UpdateWhere(ctx,
			repository.BookingFilter{ID: id, WithStatus: &confirmed},
			repository.BookingUpdate{Status: &ongoing},
			false,
		)
		switch {
		case err == nil:
			started++
		case errors.Is(err, repository.ErrConditionFailed), errors.Is(err, repository.ErrNotFound):
		default:
			errs = append(errs, fmt.Errorf("start booking %s: %w", id, err))
		}
	}
	return started, errors.Join(errs...)
}

// managed loads a booking the actor may administer: its vehicle's owner or an admin.
func (s *Service) managed(ctx context.Context, bookingID uuid.UUID, actor Actor) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking")
	}
	if !manages(b, actor) {
		return nil, ErrNotFound
	}
	return b, nil
}

func manages(b *domain.Booking, actor Actor) bool {
	if actor.Role == string(domain.RoleAdmin) {
		return true
	}
	return b.Vehicle != nil && b.Vehicle.OwnerID == actor.ID
}

func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func pricingError(err error) error {
	var pErr *pricing.ValidationError
	if errors.As(err, &pErr) {
		return invalid(pErr.Reason)
	}
	return err
}

func statusPtr(s domain.VehicleStatus) *domain.VehicleStatus { return &s }

func firstOf(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
