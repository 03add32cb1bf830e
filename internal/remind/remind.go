// Package remind warns the Telegram chat shortly before a meeting-room
// reservation starts, so the room is handed over on time.
package remind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/slots"
)

// ReservationLister is the slice of the booking service the reminder needs.
type ReservationLister interface {
	ListForDate(date string) []model.Reservation
}

// Notifier delivers the reminder text.
type Notifier interface {
	Notify(text string) error
}

// Config tunes the reminder loop.
type Config struct {
	// MinutesBefore is how long before the start the reminder fires.
	MinutesBefore int
	// CheckInterval is how often upcoming reservations are scanned.
	CheckInterval time.Duration
}

// DefaultConfig reminds 15 minutes ahead, scanning every minute.
func DefaultConfig() Config {
	return Config{MinutesBefore: 15, CheckInterval: time.Minute}
}

// Service scans the day's reservations and sends each reminder once.
type Service struct {
	reservations ReservationLister
	notifier     Notifier
	config       Config
	logger       *zerolog.Logger
	now          func() time.Time

	mu   sync.Mutex
	sent map[string]struct{}
}

// NewService builds the reminder loop.
func NewService(reservations ReservationLister, notifier Notifier, cfg Config, logger *zerolog.Logger) *Service {
	if cfg.MinutesBefore <= 0 {
		cfg.MinutesBefore = DefaultConfig().MinutesBefore
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultConfig().CheckInterval
	}
	return &Service{
		reservations: reservations,
		notifier:     notifier,
		config:       cfg,
		logger:       logger,
		now:          time.Now,
		sent:         make(map[string]struct{}),
	}
}

// Start runs the scan loop until ctx is done.
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckOnce()
		}
	}
}

// CheckOnce sends reminders for reservations starting within the window.
// Reservations already under way are skipped, and each reservation is
// reminded at most once per process lifetime.
func (s *Service) CheckOnce() {
	now := s.now()
	today := now.Format("2006-01-02")
	nowMinutes := now.Hour()*60 + now.Minute()

	for _, res := range s.reservations.ListForDate(today) {
		start, err := slots.Parse(res.StartTime)
		if err != nil {
			continue
		}
		lead := start - nowMinutes
		if lead < 0 || lead > s.config.MinutesBefore {
			continue
		}
		if s.alreadySent(res.ID) {
			continue
		}

		text := fmt.Sprintf("Recordatorio: sala reservada a las %s por %s (%s)",
			res.StartTime, res.Responsible, res.Subject)
		if err := s.notifier.Notify(text); err != nil {
			s.logger.Error().Err(err).Str("id", res.ID).Msg("reminder not delivered")
			s.forget(res.ID)
			continue
		}
		s.logger.Info().Str("id", res.ID).Str("start", res.StartTime).Msg("reminder sent")
	}
}

// alreadySent marks the id as reminded and reports whether it already was.
func (s *Service) alreadySent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sent[id]; ok {
		return true
	}
	s.sent[id] = struct{}{}
	return false
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sent, id)
}
