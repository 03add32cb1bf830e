package pettycash

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
	svc, err := NewService(context.Background(), st, nil, &logger)
	require.NoError(t, err)
	return svc
}

func TestOpenOnlyOneActive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	box, err := svc.Open(ctx, "2024-06-01", 50000, model.RoleCompras)
	require.NoError(t, err)
	assert.False(t, box.IsClosed())

	_, err = svc.Open(ctx, "2024-06-02", 10000, model.RoleCompras)
	assert.ErrorIs(t, err, ErrBoxAlreadyOpen)

	_, err = svc.Open(ctx, "2024-06-02", -5, model.RoleCompras)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestExpensesAndBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, "2024-06-01", 50000, model.RoleCompras)
	require.NoError(t, err)

	_, err = svc.AddExpense(ctx, ExpenseInput{Date: "2024-06-03", Kind: model.ExpenseFuel, Amount: 12000})
	require.NoError(t, err)
	e2, err := svc.AddExpense(ctx, ExpenseInput{Date: "2024-06-05", Kind: model.ExpenseCleaning, Detail: "productos", Amount: 3000})
	require.NoError(t, err)

	active := svc.Active()
	require.NotNil(t, active)
	assert.Equal(t, 35000.0, active.Balance())

	// Edit one expense, then remove it.
	_, err = svc.UpdateExpense(ctx, e2.ID, ExpenseInput{Date: "2024-06-05", Kind: model.ExpenseCleaning, Amount: 5000})
	require.NoError(t, err)
	assert.Equal(t, 33000.0, svc.Active().Balance())

	require.NoError(t, svc.RemoveExpense(ctx, e2.ID))
	assert.Equal(t, 38000.0, svc.Active().Balance())

	assert.ErrorIs(t, svc.RemoveExpense(ctx, e2.ID), ErrExpenseNotFound)
}

func TestExpenseWithoutActiveBox(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddExpense(ctx, ExpenseInput{Date: "2024-06-03", Kind: model.ExpenseOther, Amount: 100})
	assert.ErrorIs(t, err, ErrNoActiveBox)

	_, err = svc.Close(ctx, "2024-06-30", model.RoleCompras)
	assert.ErrorIs(t, err, ErrNoActiveBox)
}

func TestCloseArchivesAndClears(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, "2024-06-01", 50000, model.RoleCompras)
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, ExpenseInput{Date: "2024-06-03", Kind: model.ExpenseFuel, Amount: 12000})
	require.NoError(t, err)

	closed, err := svc.Close(ctx, "2024-06-30", model.RoleAdministracion)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, closed.TotalExpenses)
	assert.Equal(t, 38000.0, closed.FinalBalance)
	assert.Equal(t, model.RoleAdministracion, closed.ClosedBy)
	assert.True(t, closed.IsClosed())

	assert.Nil(t, svc.Active())
	require.Len(t, svc.ListArchived(), 1)

	// A new caja can open now.
	_, err = svc.Open(ctx, "2024-07-01", 60000, model.RoleCompras)
	require.NoError(t, err)
}

func TestArchiveSortedByOpeningDateDesc(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"2024-04-01", "2024-06-01", "2024-05-01"} {
		_, err := svc.Open(ctx, date, 10000, model.RoleCompras)
		require.NoError(t, err)
		_, err = svc.Close(ctx, date, model.RoleCompras)
		require.NoError(t, err)
	}

	archived := svc.ListArchived()
	require.Len(t, archived, 3)
	assert.Equal(t, "2024-06-01", archived[0].OpeningDate)
	assert.Equal(t, "2024-05-01", archived[1].OpeningDate)
	assert.Equal(t, "2024-04-01", archived[2].OpeningDate)
}

func TestPersistenceAcrossRestarts(t *testing.T) {
	logger := zerolog.New(io.Discard)
	st, err := store.NewFileStore(t.TempDir(), &logger)
	require.NoError(t, err)
	ctx := context.Background()

	svc, err := NewService(ctx, st, nil, &logger)
	require.NoError(t, err)

	_, err = svc.Open(ctx, "2024-05-01", 10000, model.RoleCompras)
	require.NoError(t, err)
	_, err = svc.Close(ctx, "2024-05-31", model.RoleCompras)
	require.NoError(t, err)
	_, err = svc.Open(ctx, "2024-06-01", 20000, model.RoleCompras)
	require.NoError(t, err)

	reloaded, err := NewService(ctx, st, nil, &logger)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Active())
	assert.Equal(t, 20000.0, reloaded.Active().OpeningAmount)
	assert.Equal(t, svc.ListArchived(), reloaded.ListArchived())
}
