// Package works keeps the registry of obras: tenders the company was
// invited to, tracked from invitation through execution.
package works

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/store"
)

var (
	// ErrNotFound means no obra matches the given id.
	ErrNotFound = errors.New("obra not found")
	// ErrInvalidState means the supplied estado is not a known one.
	ErrInvalidState = errors.New("invalid obra state")
	// ErrMissingField means a required field was empty.
	ErrMissingField = errors.New("nombre, ubicación and comitente are required")
)

// Input carries the caller-supplied fields of an obra.
type Input struct {
	Name              string
	Location          string
	Client            string
	IsUTE             bool
	UTEPartner        string
	InvitationDate    string
	SubmissionDate    string
	OfferAmount       float64
	Currency          string
	DollarRate        float64
	AdvancePercent    float64
	ValidityTerm      int
	ValidityUnit      model.ValidityUnit
	PolynomialFormula bool
	Duration          int
	DurationUnit      string
	State             model.WorkState
	AwardedCompany    string
	Observations      string
	TenderYear        int
	StartDate         string
	EndDate           string
	ProvisionalRecv   string
	DefinitiveRecv    string
}

// Service owns the obras collection.
type Service struct {
	mu     sync.RWMutex
	works  []model.Work
	store  store.Store
	logger *zerolog.Logger
}

// NewService loads the persisted obras; a missing collection starts empty.
func NewService(ctx context.Context, st store.Store, logger *zerolog.Logger) (*Service, error) {
	s := &Service{store: st, logger: logger}

	data, err := st.Load(ctx, store.CollectionWorks)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load obras: %w", err)
	}
	if err := json.Unmarshal(data, &s.works); err != nil {
		return nil, fmt.Errorf("decode obras: %w", err)
	}

	logger.Info().Int("count", len(s.works)).Msg("Obras loaded")
	return s, nil
}

func (in Input) validate() error {
	if in.Name == "" || in.Location == "" || in.Client == "" {
		return ErrMissingField
	}
	if !in.State.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidState, in.State)
	}
	return nil
}

func (in Input) apply(w *model.Work) {
	w.Name = in.Name
	w.Location = in.Location
	w.Client = in.Client
	w.IsUTE = in.IsUTE
	w.UTEPartner = in.UTEPartner
	w.InvitationDate = in.InvitationDate
	w.SubmissionDate = in.SubmissionDate
	w.OfferAmount = in.OfferAmount
	w.Currency = in.Currency
	w.DollarRate = in.DollarRate
	w.AdvancePercent = in.AdvancePercent
	w.ValidityTerm = in.ValidityTerm
	w.ValidityUnit = in.ValidityUnit
	w.PolynomialFormula = in.PolynomialFormula
	w.Duration = in.Duration
	w.DurationUnit = in.DurationUnit
	w.State = in.State
	w.AwardedCompany = in.AwardedCompany
	w.Observations = in.Observations
	w.TenderYear = in.TenderYear
	w.StartDate = in.StartDate
	w.EndDate = in.EndDate
	w.ProvisionalRecv = in.ProvisionalRecv
	w.DefinitiveRecv = in.DefinitiveRecv

	// A non-UTE obra carries no partner.
	if !w.IsUTE {
		w.UTEPartner = ""
	}
}

// Add registers a new obra.
func (s *Service) Add(ctx context.Context, in Input, createdBy model.Role) (*model.Work, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := model.Work{
		ID:        uuid.NewString(),
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	in.apply(&w)
	s.works = append(s.works, w)

	s.logger.Info().Str("id", w.ID).Str("nombre", w.Name).Msg("Obra registered")

	if err := s.persistLocked(ctx); err != nil {
		return &w, fmt.Errorf("obra registered but not persisted: %w", err)
	}
	return &w, nil
}

// Update replaces the editable fields of an existing obra.
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Work, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.works {
		if s.works[i].ID != id {
			continue
		}
		in.apply(&s.works[i])
		updated := s.works[i]

		s.logger.Info().Str("id", id).Msg("Obra updated")

		if err := s.persistLocked(ctx); err != nil {
			return &updated, fmt.Errorf("obra updated but not persisted: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Get returns the obra with the given id.
func (s *Service) Get(id string) (*model.Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.works {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns every obra in registration order.
func (s *Service) List() []model.Work {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Work(nil), s.works...)
}

// ListByState returns the obras in the given estado, registration order.
func (s *Service) ListByState(state model.WorkState) []model.Work {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Work
	for _, w := range s.works {
		if w.State == state {
			out = append(out, w)
		}
	}
	return out
}

// ListByTenderYear returns the obras tendered in year, registration order.
func (s *Service) ListByTenderYear(year int) []model.Work {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Work
	for _, w := range s.works {
		if w.TenderYear == year {
			out = append(out, w)
		}
	}
	return out
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.works)
	if err != nil {
		return fmt.Errorf("encode obras: %w", err)
	}
	if err := s.store.Save(ctx, store.CollectionWorks, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist obras")
		return err
	}
	return nil
}
