package personnel

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := zerolog.New(io.Discard)
	st, err := store.NewFileStore(t.TempDir(), &logger)
	require.NoError(t, err)
	svc, err := NewService(context.Background(), st, &logger)
	require.NoError(t, err)
	return svc
}

func sampleInput() Input {
	return Input{
		FullName:        "Juan Pérez",
		DNI:             "30123456",
		BirthDate:       "1985-04-12",
		Location:        model.LocationOficina,
		OfficeArea:      model.RoleFinanzas,
		ContractLine:    model.ContractLineA,
		CivilState:      model.CivilMarried,
		HasChildren:     true,
		HealthInsurance: "OSDE",
	}
}

func TestAddAndGet(t *testing.T) {
	svc := newTestService(t)

	e, err := svc.Add(context.Background(), sampleInput(), model.RoleRecursosHumanos)
	require.NoError(t, err)
	assert.Equal(t, model.EmploymentActive, e.State)
	assert.Empty(t, e.TerminationDate)

	got, err := svc.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, *e, *got)
}

func TestAddRejectsDuplicateDNI(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, sampleInput(), model.RoleRecursosHumanos)
	require.NoError(t, err)

	dup := sampleInput()
	dup.FullName = "Otro Nombre"
	_, err = svc.Add(ctx, dup, model.RoleRecursosHumanos)
	assert.ErrorIs(t, err, ErrDuplicateDNI)
	assert.Len(t, svc.List(), 1)
}

func TestLocationConsistency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := sampleInput()
	in.Location = model.LocationObra
	in.AssignedWorkID = ""
	_, err := svc.Add(ctx, in, model.RoleRecursosHumanos)
	assert.ErrorIs(t, err, ErrInvalidLocation)

	in.AssignedWorkID = "obra-1"
	e, err := svc.Add(ctx, in, model.RoleRecursosHumanos)
	require.NoError(t, err)
	// Office area is dropped for obra-located personnel.
	assert.Empty(t, e.OfficeArea)
	assert.Equal(t, "obra-1", e.AssignedWorkID)
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	e, err := svc.Add(ctx, sampleInput(), model.RoleRecursosHumanos)
	require.NoError(t, err)

	second := sampleInput()
	second.DNI = "28999888"
	second.FullName = "María Gómez"
	other, err := svc.Add(ctx, second, model.RoleRecursosHumanos)
	require.NoError(t, err)

	// Updating onto another employee's DNI is rejected.
	in := sampleInput()
	in.DNI = second.DNI
	_, err = svc.Update(ctx, e.ID, in)
	assert.ErrorIs(t, err, ErrDuplicateDNI)

	// Keeping one's own DNI is fine.
	in = sampleInput()
	in.CivilState = model.CivilDivorced
	updated, err := svc.Update(ctx, e.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.CivilDivorced, updated.CivilState)

	_, err = svc.Update(ctx, "missing", sampleInput())
	assert.ErrorIs(t, err, ErrNotFound)
	_ = other
}

func TestDeactivate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	e, err := svc.Add(ctx, sampleInput(), model.RoleRecursosHumanos)
	require.NoError(t, err)

	out, err := svc.Deactivate(ctx, e.ID, "2024-08-31")
	require.NoError(t, err)
	assert.Equal(t, model.EmploymentInactive, out.State)
	assert.Equal(t, "2024-08-31", out.TerminationDate)

	_, err = svc.Deactivate(ctx, e.ID, "2024-09-01")
	assert.ErrorIs(t, err, ErrAlreadyInactive)

	assert.Len(t, svc.List(), 1)
	assert.Empty(t, svc.ListActive())
}

func TestPersistenceAcrossRestarts(t *testing.T) {
	logger := zerolog.New(io.Discard)
	st, err := store.NewFileStore(t.TempDir(), &logger)
	require.NoError(t, err)
	ctx := context.Background()

	svc, err := NewService(ctx, st, &logger)
	require.NoError(t, err)
	_, err = svc.Add(ctx, sampleInput(), model.RoleRecursosHumanos)
	require.NoError(t, err)

	reloaded, err := NewService(ctx, st, &logger)
	require.NoError(t, err)
	assert.Equal(t, svc.List(), reloaded.List())
}
