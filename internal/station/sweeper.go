package station

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReservationSweeper releases reservations whose window has passed. The
// state machine itself never expires anything; this runs as the
// time-based collaborator next to it.
type ReservationSweeper struct {
	registry *Registry
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewReservationSweeper builds a sweeper over the registry.
func NewReservationSweeper(registry *Registry, interval time.Duration, logger *zap.Logger) *ReservationSweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationSweeper{
		registry: registry,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the sweep loop until the context is canceled.
func (s *ReservationSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep releases every expired reservation once.
func (s *ReservationSweeper) Sweep() {
	now := s.now().UTC()
	for _, st := range s.registry.List() {
		for _, evse := range st.evseList() {
			res, ok := evse.Reservation()
			if !ok || !res.Expired(now) {
				continue
			}
			if evse.CancelReservation(res.ID) {
				s.logger.Info("reservation expired",
					zap.String("station_id", st.ID().String()),
					zap.String("evse_id", evse.ID().String()),
					zap.String("reservation_id", res.ID.String()))
			}
		}
	}
}
