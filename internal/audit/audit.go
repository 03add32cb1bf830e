// Package audit keeps a persistent activity log of the back office. It
// listens on the event bus, records who did what and when, prunes old
// entries on an interval and can dump the log to an Excel sheet.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Anedula/NioiAccess/internal/events"
	"github.com/Anedula/NioiAccess/internal/export"
	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/store"
)

// Entry is one recorded action.
type Entry struct {
	Timestamp time.Time  `json:"timestamp"`
	Action    string     `json:"accion"`
	Role      model.Role `json:"rol,omitempty"`
	Detail    string     `json:"detalle"`
}

// Config tunes retention and the prune cadence.
type Config struct {
	RetentionDays int
	PruneInterval time.Duration
}

// DefaultConfig keeps a month of activity, pruned daily.
func DefaultConfig() Config {
	return Config{RetentionDays: 31, PruneInterval: 24 * time.Hour}
}

// Service owns the activity-log collection.
type Service struct {
	mu      sync.RWMutex
	entries []Entry
	store   store.Store
	config  Config
	logger  *zerolog.Logger
}

// NewService loads the persisted log; a missing collection starts empty.
func NewService(ctx context.Context, st store.Store, cfg Config, logger *zerolog.Logger) (*Service, error) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultConfig().RetentionDays
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = DefaultConfig().PruneInterval
	}
	s := &Service{store: st, config: cfg, logger: logger}

	data, err := st.Load(ctx, store.CollectionAuditLog)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load activity log: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("decode activity log: %w", err)
	}
	return s, nil
}

// SubscribeTo records every domain event the bus carries.
func (s *Service) SubscribeTo(bus *events.EventBus) {
	bus.Subscribe(events.TypeReservationCreated, s.handleReservation("Reserva de sala creada"))
	bus.Subscribe(events.TypeReservationDeleted, s.handleReservation("Reserva de sala eliminada"))
	bus.Subscribe(events.TypeCashBoxOpened, s.handleCashBox("Caja chica abierta"))
	bus.Subscribe(events.TypeCashBoxClosed, s.handleCashBox("Caja chica cerrada"))
}

func (s *Service) handleReservation(action string) events.EventHandler {
	return func(event events.Event) error {
		var res model.Reservation
		if err := json.Unmarshal(event.Payload, &res); err != nil {
			return fmt.Errorf("decode reservation event: %w", err)
		}
		detail := fmt.Sprintf("%s %s-%s (%s)", res.Date, res.StartTime, res.EndTime, res.Subject)
		return s.Record(context.Background(), action, res.CreatedBy, detail)
	}
}

func (s *Service) handleCashBox(action string) events.EventHandler {
	return func(event events.Event) error {
		var box model.CashBox
		if err := json.Unmarshal(event.Payload, &box); err != nil {
			return fmt.Errorf("decode cashbox event: %w", err)
		}
		detail := fmt.Sprintf("apertura %s, monto inicial %.2f", box.OpeningDate, box.OpeningAmount)
		return s.Record(context.Background(), action, box.CreatedBy, detail)
	}
}

// Record appends an entry and writes the log through to the store.
func (s *Service) Record(ctx context.Context, action string, role model.Role, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		Timestamp: time.Now(),
		Action:    action,
		Role:      role,
		Detail:    detail,
	})
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Error().Err(err).Msg("activity log not persisted")
		return err
	}
	return nil
}

// List returns the log, newest first.
func (s *Service) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Prune drops entries older than the retention window.
func (s *Service) Prune(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(s.entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	s.entries = kept
	if err := s.persistLocked(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// Start runs the prune loop until ctx is done.
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Prune(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("activity log prune failed")
				continue
			}
			if removed > 0 {
				s.logger.Info().Int("removed", removed).Msg("activity log pruned")
			}
		}
	}
}

// ExportTo writes the log as a workbook sheet.
func (s *Service) ExportTo(w io.Writer) error {
	wr := export.NewWriter()
	defer wr.Close()

	if err := wr.AddSheet("Registro de Actividad"); err != nil {
		return err
	}
	if err := wr.WriteHeader([]string{"Fecha y hora", "Acción", "Rol", "Detalle"}); err != nil {
		return err
	}

	s.mu.RLock()
	entries := append([]Entry(nil), s.entries...)
	s.mu.RUnlock()

	for _, e := range entries {
		row := []interface{}{
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Action,
			string(e.Role),
			e.Detail,
		}
		if err := wr.WriteRow(row); err != nil {
			return err
		}
	}
	return wr.Save(w)
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.CollectionAuditLog, data)
}
