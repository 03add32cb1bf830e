// Package attendance records per-employee daily attendance. At most one
// record exists per (employee, date): recording again replaces the estado.
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/store"
)

var (
	// ErrInvalidState means the estado is not a known attendance state.
	ErrInvalidState = errors.New("invalid attendance state")
	// ErrMissingField means employee id or date was empty.
	ErrMissingField = errors.New("employee id and date are required")
)

// Service owns the attendance collection.
type Service struct {
	mu      sync.RWMutex
	records []model.AttendanceRecord
	store   store.Store
	logger  *zerolog.Logger
}

// NewService loads the persisted records; a missing collection starts empty.
func NewService(ctx context.Context, st store.Store, logger *zerolog.Logger) (*Service, error) {
	s := &Service{store: st, logger: logger}

	data, err := st.Load(ctx, store.CollectionAttendance)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}

	logger.Info().Int("count", len(s.records)).Msg("Attendance records loaded")
	return s, nil
}

// Record upserts the attendance of employeeID on date. An existing record
// keeps its id; the estado and the recorded-by metadata are refreshed.
func (s *Service) Record(ctx context.Context, employeeID, date string, state model.AttendanceState, recordedBy model.Role) (*model.AttendanceRecord, error) {
	if employeeID == "" || date == "" {
		return nil, ErrMissingField
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, state)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].EmployeeID == employeeID && s.records[i].Date == date {
			s.records[i].State = state
			s.records[i].RecordedBy = recordedBy
			s.records[i].RecordedAt = time.Now().UTC()
			updated := s.records[i]

			if err := s.persistLocked(ctx); err != nil {
				return &updated, fmt.Errorf("attendance recorded but not persisted: %w", err)
			}
			return &updated, nil
		}
	}

	rec := model.AttendanceRecord{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Date:       date,
		State:      state,
		RecordedBy: recordedBy,
		RecordedAt: time.Now().UTC(),
	}
	s.records = append(s.records, rec)

	if err := s.persistLocked(ctx); err != nil {
		return &rec, fmt.Errorf("attendance recorded but not persisted: %w", err)
	}
	return &rec, nil
}

// Get returns the record for (employeeID, date), or nil when absent.
func (s *Service) Get(employeeID, date string) *model.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.EmployeeID == employeeID && r.Date == date {
			return &r
		}
	}
	return nil
}

// ListForDate returns every record on date.
func (s *Service) ListForDate(date string) []model.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AttendanceRecord
	for _, r := range s.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// ListForEmployeeMonth returns the employee's records in month "YYYY-MM".
func (s *Service) ListForEmployeeMonth(employeeID, month string) []model.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AttendanceRecord
	for _, r := range s.records {
		if r.EmployeeID == employeeID && strings.HasPrefix(r.Date, month+"-") {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("encode attendance: %w", err)
	}
	if err := s.store.Save(ctx, store.CollectionAttendance, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist attendance")
		return err
	}
	return nil
}
