// Package pricing handles the price requests Oficina Técnica sends to
// Compras: OT owns the descriptive fields, Compras fills in the quotes.
package pricing

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
	// ErrNotFound means no request matches the given id.
	ErrNotFound = errors.New("price request not found")
	// ErrForbidden means the acting role may not perform the operation.
	ErrForbidden = errors.New("role not allowed")
	// ErrMissingField means a required field was empty or non-positive.
	ErrMissingField = errors.New("descripción, obra and a positive cantidad are required")
)

// RequestInput carries the OT-owned fields of a price request.
type RequestInput struct {
	Description string
	Unit        model.PriceUnit
	CustomUnit  string
	Quantity    float64
	WorkID      string
	Kind        model.PriceRequestKind
}

// PricingInput carries the Compras-owned fields.
type PricingInput struct {
	UnitPriceARS float64
	UnitPriceUSD float64
}

// Service owns the price-request collection.
type Service struct {
	mu       sync.RWMutex
	requests []model.PriceRequest
	store    store.Store
	logger   *zerolog.Logger
}

// NewService loads the persisted requests; a missing collection starts empty.
func NewService(ctx context.Context, st store.Store, logger *zerolog.Logger) (*Service, error) {
	s := &Service{store: st, logger: logger}

	data, err := st.Load(ctx, store.CollectionPriceRequests)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load price requests: %w", err)
	}
	if err := json.Unmarshal(data, &s.requests); err != nil {
		return nil, fmt.Errorf("decode price requests: %w", err)
	}

	logger.Info().Int("count", len(s.requests)).Msg("Price requests loaded")
	return s, nil
}

func (in RequestInput) validate() error {
	if in.Description == "" || in.WorkID == "" || in.Quantity <= 0 {
		return ErrMissingField
	}
	return nil
}

func (in RequestInput) apply(r *model.PriceRequest) {
	r.Description = in.Description
	r.Unit = in.Unit
	r.CustomUnit = in.CustomUnit
	r.Quantity = in.Quantity
	r.WorkID = in.WorkID
	r.Kind = in.Kind

	// The custom label only makes sense for the "otro" unit.
	if r.Unit != model.UnitOther {
		r.CustomUnit = ""
	}
}

// Create registers a request. Only Oficina Técnica may create.
func (s *Service) Create(ctx context.Context, in RequestInput, creator model.Role) (*model.PriceRequest, error) {
	if creator != model.RoleOficinaTecnica {
		return nil, fmt.Errorf("%w: %s may not create price requests", ErrForbidden, creator)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := model.PriceRequest{
		ID:        uuid.NewString(),
		CreatedBy: creator,
		CreatedAt: time.Now().UTC(),
	}
	in.apply(&r)
	s.requests = append(s.requests, r)

	s.logger.Info().Str("id", r.ID).Str("obra", r.WorkID).Msg("Price request created")

	if err := s.persistLocked(ctx); err != nil {
		return &r, fmt.Errorf("price request created but not persisted: %w", err)
	}
	return &r, nil
}

// UpdateRequest replaces the OT-owned fields of a request.
func (s *Service) UpdateRequest(ctx context.Context, id string, in RequestInput) (*model.PriceRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID != id {
			continue
		}
		in.apply(&s.requests[i])
		updated := s.requests[i]

		if err := s.persistLocked(ctx); err != nil {
			return &updated, fmt.Errorf("price request updated but not persisted: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// UpdatePricing sets the quoted prices. Only Compras may quote; the update
// metadata is stamped so OT can see when the numbers arrived.
func (s *Service) UpdatePricing(ctx context.Context, id string, in PricingInput, updater model.Role) (*model.PriceRequest, error) {
	if updater != model.RoleCompras {
		return nil, fmt.Errorf("%w: %s may not update pricing", ErrForbidden, updater)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID != id {
			continue
		}
		now := time.Now().UTC()
		s.requests[i].UnitPriceARS = in.UnitPriceARS
		s.requests[i].UnitPriceUSD = in.UnitPriceUSD
		s.requests[i].UpdatedBy = updater
		s.requests[i].UpdatedAt = &now
		updated := s.requests[i]

		s.logger.Info().Str("id", id).Msg("Price request quoted")

		if err := s.persistLocked(ctx); err != nil {
			return &updated, fmt.Errorf("pricing updated but not persisted: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Delete removes a request.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID != id {
			continue
		}
		s.requests = append(s.requests[:i], s.requests[i+1:]...)

		if err := s.persistLocked(ctx); err != nil {
			return fmt.Errorf("price request deleted but not persisted: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Get returns the request with the given id.
func (s *Service) Get(id string) (*model.PriceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.requests {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns every request in creation order.
func (s *Service) List() []model.PriceRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PriceRequest(nil), s.requests...)
}

// ListForWork returns the requests targeting one obra, creation order.
func (s *Service) ListForWork(workID string) []model.PriceRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PriceRequest
	for _, r := range s.requests {
		if r.WorkID == workID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.requests)
	if err != nil {
		return fmt.Errorf("encode price requests: %w", err)
	}
	if err := s.store.Save(ctx, store.CollectionPriceRequests, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist price requests")
		return err
	}
	return nil
}
