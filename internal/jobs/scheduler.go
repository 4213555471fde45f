package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// BookingStarter moves confirmed bookings whose start date has arrived to ongoing.
type BookingStarter interface {
	StartDue(ctx context.Context) (int, error)
}

type Scheduler struct {
	sched gocron.Scheduler
}

// New returns a scheduler running starter.StartDue every interval. A zero
// interval returns nil: auto-start is off.
func New(starter BookingStarter, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { runStartDue(starter) }),
		gocron.WithName("booking_autostart"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Start() {
	if s == nil {
		return
	}
	log.Printf("scheduler: %d job(s) queued", len(s.sched.Jobs()))
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	if s == nil {
		return nil
	}
	return s.sched.Shutdown()
}

func runStartDue(starter BookingStarter) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := starter.StartDue(ctx)
	if err != nil {
		log.Printf("booking_autostart: started=%d err=%v", n, err)
		return
	}
	if n > 0 {
		log.Printf("booking_autostart: started=%d", n)
	}
}
