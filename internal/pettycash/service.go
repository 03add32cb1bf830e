// Package pettycash runs the caja chica of Compras: one active cash box
// at a time, drained by expenses, closed out and archived.
package pettycash

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
	"github.com/Anedula/NioiAccess/internal/store"
)

var (
	// ErrNoActiveBox means no caja is currently open.
	ErrNoActiveBox = errors.New("no active cash box")
	// ErrBoxAlreadyOpen means a caja is open and must be closed first.
	ErrBoxAlreadyOpen = errors.New("a cash box is already open")
	// ErrExpenseNotFound means no expense matches the given id.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrInvalidAmount means a non-positive amount was supplied.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Publisher pushes domain events to interested subscribers.
type Publisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ExpenseInput carries the caller-supplied fields of an expense.
type ExpenseInput struct {
	Date   string
	Kind   model.ExpenseKind
	Detail string
	Amount float64
}

// Service owns the active caja and the archive.
type Service struct {
	mu       sync.RWMutex
	active   *model.CashBox
	archived []model.CashBox
	store    store.Store
	bus      Publisher
	logger   *zerolog.Logger
}

// NewService loads both collections; missing collections start empty.
func NewService(ctx context.Context, st store.Store, bus Publisher, logger *zerolog.Logger) (*Service, error) {
	s := &Service{store: st, bus: bus, logger: logger}

	data, err := st.Load(ctx, store.CollectionActiveCashBox)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load active caja: %w", err)
	default:
		var active model.CashBox
		if err := json.Unmarshal(data, &active); err != nil {
			return nil, fmt.Errorf("decode active caja: %w", err)
		}
		s.active = &active
	}

	data, err = st.Load(ctx, store.CollectionArchivedCashBoxes)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load archived cajas: %w", err)
	default:
		if err := json.Unmarshal(data, &s.archived); err != nil {
			return nil, fmt.Errorf("decode archived cajas: %w", err)
		}
	}

	logger.Info().
		Bool("active", s.active != nil).
		Int("archived", len(s.archived)).
		Msg("Caja chica loaded")
	return s, nil
}

// Active returns a copy of the open caja, or nil when none is open.
func (s *Service) Active() *model.CashBox {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return nil
	}
	cp := *s.active
	cp.Expenses = append([]model.Expense(nil), s.active.Expenses...)
	return &cp
}

// ListArchived returns the closed cajas, newest opening date first.
func (s *Service) ListArchived() []model.CashBox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CashBox(nil), s.archived...)
}

// Open starts a new caja. Fails while another is open.
func (s *Service) Open(ctx context.Context, openingDate string, openingAmount float64, openedBy model.Role) (*model.CashBox, error) {
	if openingAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return nil, ErrBoxAlreadyOpen
	}

	box := model.CashBox{
		ID:            uuid.NewString(),
		OpeningDate:   openingDate,
		OpeningAmount: openingAmount,
		Expenses:      []model.Expense{},
		CreatedBy:     openedBy,
		CreatedAt:     time.Now().UTC(),
	}
	s.active = &box

	metrics.IncCashBoxEvent("opened")
	if s.bus != nil {
		_ = s.bus.PublishJSON(events.TypeCashBoxOpened, box)
	}

	s.logger.Info().
		Str("id", box.ID).
		Float64("monto_inicial", openingAmount).
		Msg("Caja chica opened")

	if err := s.persistActiveLocked(ctx); err != nil {
		return &box, fmt.Errorf("caja opened but not persisted: %w", err)
	}
	return &box, nil
}

// AddExpense records an outflow against the active caja.
func (s *Service) AddExpense(ctx context.Context, in ExpenseInput) (*model.Expense, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, ErrNoActiveBox
	}

	e := model.Expense{
		ID:     uuid.NewString(),
		Date:   in.Date,
		Kind:   in.Kind,
		Detail: in.Detail,
		Amount: in.Amount,
	}
	s.active.Expenses = append(s.active.Expenses, e)

	if err := s.persistActiveLocked(ctx); err != nil {
		return &e, fmt.Errorf("expense recorded but not persisted: %w", err)
	}
	return &e, nil
}

// UpdateExpense replaces the fields of an existing expense.
func (s *Service) UpdateExpense(ctx context.Context, id string, in ExpenseInput) (*model.Expense, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, ErrNoActiveBox
	}
	for i := range s.active.Expenses {
		if s.active.Expenses[i].ID != id {
			continue
		}
		s.active.Expenses[i].Date = in.Date
		s.active.Expenses[i].Kind = in.Kind
		s.active.Expenses[i].Detail = in.Detail
		s.active.Expenses[i].Amount = in.Amount
		updated := s.active.Expenses[i]

		if err := s.persistActiveLocked(ctx); err != nil {
			return &updated, fmt.Errorf("expense updated but not persisted: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
}

// RemoveExpense deletes an expense from the active caja.
func (s *Service) RemoveExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ErrNoActiveBox
	}
	for i := range s.active.Expenses {
		if s.active.Expenses[i].ID != id {
			continue
		}
		s.active.Expenses = append(s.active.Expenses[:i], s.active.Expenses[i+1:]...)

		if err := s.persistActiveLocked(ctx); err != nil {
			return fmt.Errorf("expense removed but not persisted: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
}

// Close totals the expenses, stamps the final balance and the closer,
// archives the caja (newest opening date first) and clears the active one.
func (s *Service) Close(ctx context.Context, closingDate string, closedBy model.Role) (*model.CashBox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return nil, ErrNoActiveBox
	}

	box := *s.active
	now := time.Now().UTC()

	var total float64
	for _, e := range box.Expenses {
		total += e.Amount
	}
	box.ClosingDate = closingDate
	box.TotalExpenses = total
	box.FinalBalance = box.OpeningAmount - total
	box.ClosedBy = closedBy
	box.ClosedAt = &now

	s.archived = append(s.archived, box)
	sort.SliceStable(s.archived, func(i, j int) bool {
		return s.archived[i].OpeningDate > s.archived[j].OpeningDate
	})
	s.active = nil

	metrics.IncCashBoxEvent("closed")
	if s.bus != nil {
		_ = s.bus.PublishJSON(events.TypeCashBoxClosed, box)
	}

	s.logger.Info().
		Str("id", box.ID).
		Float64("total_egresos", total).
		Float64("saldo_final", box.FinalBalance).
		Msg("Caja chica closed")

	if err := s.persistAllLocked(ctx); err != nil {
		return &box, fmt.Errorf("caja closed but not persisted: %w", err)
	}
	return &box, nil
}

func (s *Service) persistActiveLocked(ctx context.Context) error {
	if s.active == nil {
		if err := s.store.Delete(ctx, store.CollectionActiveCashBox); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clear active caja")
			return err
		}
		return nil
	}
	data, err := json.Marshal(s.active)
	if err != nil {
		return fmt.Errorf("encode active caja: %w", err)
	}
	if err := s.store.Save(ctx, store.CollectionActiveCashBox, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist active caja")
		return err
	}
	return nil
}

func (s *Service) persistAllLocked(ctx context.Context) error {
	data, err := json.Marshal(s.archived)
	if err != nil {
		return fmt.Errorf("encode archived cajas: %w", err)
	}
	if err := s.store.Save(ctx, store.CollectionArchivedCashBoxes, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist archived cajas")
		return err
	}
	return s.persistActiveLocked(ctx)
}
