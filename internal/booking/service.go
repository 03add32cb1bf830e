// Package booking owns the reservation list for the shared meeting room
// and enforces the one real invariant of the back office: for a fixed
// date, no two reservations' half-open [start, end) intervals overlap.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anedula/NioiAccess/internal/events"
	"github.com/Anedula/NioiAccess/internal/metrics"
	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/slots"
	"github.com/Anedula/NioiAccess/internal/store"
)

var (
	// ErrInvalidInterval means start >= end or a malformed time was supplied.
	ErrInvalidInterval = errors.New("invalid time interval")
	// ErrSlotConflict means the requested interval overlaps an existing
	// reservation on the same date.
	ErrSlotConflict = errors.New("slot conflict")
	// ErrNotFound means no reservation matches the given id.
	ErrNotFound = errors.New("reservation not found")
	// ErrMissingField means responsible or subject was empty.
	ErrMissingField = errors.New("responsible and subject are required")
)

// WorkingHours bounds the candidate slots suggested to the UI. It does NOT
// constrain what the store accepts: a reservation outside nominal hours is
// valid as long as start < end and it overlaps nothing.
type WorkingHours struct {
	StartHour   int
	EndHour     int
	SlotMinutes int
}

// DefaultWorkingHours matches the office schedule, 08:00-18:00 in
// half-hour slots.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{StartHour: 8, EndHour: 18, SlotMinutes: 30}
}

// Publisher pushes domain events to interested subscribers.
type Publisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// CreateInput carries the caller-supplied fields of a new reservation.
type CreateInput struct {
	Date        string
	StartTime   string
	EndTime     string
	Responsible string
	Subject     string
	CreatedBy   model.Role
}

// Service is the single writer of the reservation collection. It keeps the
// authoritative list in memory and writes the whole collection through to
// the store after every mutation.
type Service struct {
	mu           sync.RWMutex
	reservations []model.Reservation
	store        store.Store
	bus          Publisher
	hours        WorkingHours
	logger       *zerolog.Logger
}

// NewService loads the persisted collection and returns the store handle.
// A missing collection starts empty; any other load failure is fatal so a
// corrupt data set is never silently replaced.
func NewService(ctx context.Context, st store.Store, bus Publisher, hours WorkingHours, logger *zerolog.Logger) (*Service, error) {
	s := &Service{store: st, bus: bus, hours: hours, logger: logger}

	data, err := st.Load(ctx, store.CollectionReservations)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	if err := json.Unmarshal(data, &s.reservations); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}
	s.sortLocked()

	logger.Info().Int("count", len(s.reservations)).Msg("Reservations loaded")
	return s, nil
}

// CandidateSlots enumerates the suggested start times inside working hours.
func (s *Service) CandidateSlots() []string {
	return slots.Generate(s.hours.StartHour, s.hours.EndHour, s.hours.SlotMinutes)
}

// SlotMinutes is the configured width of one suggested slot.
func (s *Service) SlotMinutes() int {
	return s.hours.SlotMinutes
}

// ListForDate returns the reservations on date, ascending by start time.
func (s *Service) ListForDate(date string) []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Reservation
	for _, r := range s.reservations {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// All returns a snapshot of every reservation, sorted by (date, start).
func (s *Service) All() []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Reservation(nil), s.reservations...)
}

// IsSlotAvailable reports whether [start, end) on date is free of any
// reservation other than excludeID. A degenerate interval is never
// available.
func (s *Service) IsSlotAvailable(date, start, end, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slotFreeLocked(date, start, end, excludeID)
}

func (s *Service) slotFreeLocked(date, start, end, excludeID string) bool {
	startMin, err := slots.Parse(start)
	if err != nil {
		return false
	}
	endMin, err := slots.Parse(end)
	if err != nil {
		return false
	}
	if startMin >= endMin {
		return false
	}

	for _, r := range s.reservations {
		if r.Date != date || r.ID == excludeID {
			continue
		}
		if slots.Overlaps(start, end, r.StartTime, r.EndTime) {
			return false
		}
	}
	return true
}

// Create validates the interval against the authoritative current state
// and inserts the reservation. The availability re-check and the insert
// happen under one lock, so a suggestion gone stale between query and
// submission is caught here. A persistence failure does not undo the
// in-memory insert; it is returned wrapped for the caller to surface.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	if in.Responsible == "" || in.Subject == "" {
		return nil, ErrMissingField
	}

	startMin, err := slots.Parse(in.StartTime)
	if err != nil {
		metrics.IncReservationCreated("invalid")
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, in.StartTime)
	}
	endMin, err := slots.Parse(in.EndTime)
	if err != nil {
		metrics.IncReservationCreated("invalid")
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, in.EndTime)
	}
	if startMin >= endMin {
		metrics.IncReservationCreated("invalid")
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidInterval, in.StartTime, in.EndTime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.slotFreeLocked(in.Date, in.StartTime, in.EndTime, "") {
		metrics.IncReservationCreated("conflict")
		return nil, fmt.Errorf("%w: %s %s-%s", ErrSlotConflict, in.Date, in.StartTime, in.EndTime)
	}

	res := model.Reservation{
		ID:          uuid.NewString(),
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Responsible: in.Responsible,
		Subject:     in.Subject,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	s.reservations = append(s.reservations, res)
	s.sortLocked()

	metrics.IncReservationCreated("created")
	if s.bus != nil {
		_ = s.bus.PublishJSON(events.TypeReservationCreated, res)
	}

	s.logger.Info().
		Str("id", res.ID).
		Str("date", res.Date).
		Str("start", res.StartTime).
		Str("end", res.EndTime).
		Str("responsible", res.Responsible).
		Msg("Reservation created")

	if err := s.persistLocked(ctx); err != nil {
		return &res, fmt.Errorf("reservation created but not persisted: %w", err)
	}
	return &res, nil
}

// Delete removes the reservation with the given id. Any role may delete
// any reservation; canDelete is the single place a stricter policy would
// go.
func (s *Service) Delete(ctx context.Context, id string, actingRole model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.reservations {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if !canDelete(s.reservations[idx], actingRole) {
		return fmt.Errorf("role %s may not delete reservation %s", actingRole, id)
	}

	deleted := s.reservations[idx]
	s.reservations = append(s.reservations[:idx], s.reservations[idx+1:]...)

	metrics.IncReservationDeleted()
	if s.bus != nil {
		_ = s.bus.PublishJSON(events.TypeReservationDeleted, deleted)
	}

	s.logger.Info().Str("id", id).Str("role", string(actingRole)).Msg("Reservation deleted")

	if err := s.persistLocked(ctx); err != nil {
		return fmt.Errorf("reservation deleted but not persisted: %w", err)
	}
	return nil
}

// canDelete is the deletion policy boundary. The original system intended
// a creator-or-Administración-only rule but shipped with it disabled, so
// every role passes. Tighten here if that changes.
func canDelete(_ model.Reservation, _ model.Role) bool {
	return true
}

func (s *Service) sortLocked() {
	sort.SliceStable(s.reservations, func(i, j int) bool {
		if s.reservations[i].Date != s.reservations[j].Date {
			return s.reservations[i].Date < s.reservations[j].Date
		}
		return s.reservations[i].StartTime < s.reservations[j].StartTime
	})
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.reservations)
	if err != nil {
		return fmt.Errorf("encode reservations: %w", err)
	}
	if err := s.store.Save(ctx, store.CollectionReservations, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist reservations")
		return err
	}
	return nil
}
