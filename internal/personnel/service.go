// Package personnel keeps the nómina: the employee records managed by
// Recursos Humanos.
package personnel

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
	// ErrNotFound means no employee matches the given id.
	ErrNotFound = errors.New("employee not found")
	// ErrDuplicateDNI means another employee already has that DNI.
	ErrDuplicateDNI = errors.New("duplicate DNI")
	// ErrMissingField means a required field was empty.
	ErrMissingField = errors.New("nombre completo and DNI are required")
	// ErrInvalidLocation means a location-dependent field is inconsistent:
	// Obra needs an assigned obra, Oficina needs an office area.
	ErrInvalidLocation = errors.New("inconsistent work location")
	// ErrAlreadyInactive means the employee was already given de baja.
	ErrAlreadyInactive = errors.New("employee already inactive")
)

// Input carries the caller-supplied fields of an employee record.
type Input struct {
	FullName        string
	DNI             string
	BirthDate       string
	Location        model.WorkLocation
	AssignedWorkID  string
	OfficeArea      model.Role
	ContractLine    model.ContractLine
	CivilState      model.CivilState
	HasChildren     bool
	HealthInsurance string
	MedicalNotes    string
}

// Service owns the nómina collection.
type Service struct {
	mu        sync.RWMutex
	employees []model.Employee
	store     store.Store
	logger    *zerolog.Logger
}

// NewService loads the persisted nómina; a missing collection starts empty.
func NewService(ctx context.Context, st store.Store, logger *zerolog.Logger) (*Service, error) {
	s := &Service{store: st, logger: logger}

	data, err := st.Load(ctx, store.CollectionPersonnel)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load nómina: %w", err)
	}
	if err := json.Unmarshal(data, &s.employees); err != nil {
		return nil, fmt.Errorf("decode nómina: %w", err)
	}

	logger.Info().Int("count", len(s.employees)).Msg("Nómina loaded")
	return s, nil
}

func (in Input) validate() error {
	if in.FullName == "" || in.DNI == "" {
		return ErrMissingField
	}
	switch in.Location {
	case model.LocationObra:
		if in.AssignedWorkID == "" {
			return fmt.Errorf("%w: obra asignada is required", ErrInvalidLocation)
		}
	case model.LocationOficina:
		if in.OfficeArea == "" {
			return fmt.Errorf("%w: área de oficina is required", ErrInvalidLocation)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLocation, in.Location)
	}
	return nil
}

func (in Input) apply(e *model.Employee) {
	e.FullName = in.FullName
	e.DNI = in.DNI
	e.BirthDate = in.BirthDate
	e.Location = in.Location
	e.AssignedWorkID = in.AssignedWorkID
	e.OfficeArea = in.OfficeArea
	e.ContractLine = in.ContractLine
	e.CivilState = in.CivilState
	e.HasChildren = in.HasChildren
	e.HealthInsurance = in.HealthInsurance
	e.MedicalNotes = in.MedicalNotes

	switch e.Location {
	case model.LocationObra:
		e.OfficeArea = ""
	case model.LocationOficina:
		e.AssignedWorkID = ""
	}
}

// Add registers a new employee as Alta. DNI must be unique across the
// nómina, active or not.
func (s *Service) Add(ctx context.Context, in Input, createdBy model.Role) (*model.Employee, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.employees {
		if e.DNI == in.DNI {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDNI, in.DNI)
		}
	}

	e := model.Employee{
		ID:        uuid.NewString(),
		State:     model.EmploymentActive,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	in.apply(&e)
	s.employees = append(s.employees, e)

	s.logger.Info().Str("id", e.ID).Str("dni", e.DNI).Msg("Employee registered")

	if err := s.persistLocked(ctx); err != nil {
		return &e, fmt.Errorf("employee registered but not persisted: %w", err)
	}
	return &e, nil
}

// Update replaces the editable fields of an employee record.
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Employee, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.employees {
		if s.employees[i].ID != id {
			continue
		}
		for j, other := range s.employees {
			if j != i && other.DNI == in.DNI {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateDNI, in.DNI)
			}
		}
		in.apply(&s.employees[i])
		updated := s.employees[i]

		s.logger.Info().Str("id", id).Msg("Employee updated")

		if err := s.persistLocked(ctx); err != nil {
			return &updated, fmt.Errorf("employee updated but not persisted: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Deactivate marks an employee as Baja on the given date.
func (s *Service) Deactivate(ctx context.Context, id, date string) (*model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.employees {
		if s.employees[i].ID != id {
			continue
		}
		if s.employees[i].State == model.EmploymentInactive {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInactive, id)
		}
		s.employees[i].State = model.EmploymentInactive
		s.employees[i].TerminationDate = date
		updated := s.employees[i]

		s.logger.Info().Str("id", id).Str("fecha_baja", date).Msg("Employee deactivated")

		if err := s.persistLocked(ctx); err != nil {
			return &updated, fmt.Errorf("employee deactivated but not persisted: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Get returns the employee with the given id.
func (s *Service) Get(id string) (*model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.employees {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns the full nómina in registration order.
func (s *Service) List() []model.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Employee(nil), s.employees...)
}

// ListActive returns only the employees currently de alta.
func (s *Service) ListActive() []model.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Employee
	for _, e := range s.employees {
		if e.State == model.EmploymentActive {
			out = append(out, e)
		}
	}
	return out
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.employees)
	if err != nil {
		return fmt.Errorf("encode nómina: %w", err)
	}
	if err := s.store.Save(ctx, store.CollectionPersonnel, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist nómina")
		return err
	}
	return nil
}
