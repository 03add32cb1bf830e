package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Anedula/NioiAccess/internal/model"
)

func TestWriteWorksWorkbook(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	works := []model.Work{
		{Name: "Ruta 4", Location: "Córdoba", Client: "Vialidad", State: model.WorkStateAwarded, TenderYear: 2024, OfferAmount: 100, Currency: "ARS", Duration: 12, DurationUnit: "meses"},
		{Name: "Edificio Central", Location: "CABA", Client: "Privado", State: model.WorkStateTendering, TenderYear: 2023, OfferAmount: 200, Currency: "USD", Duration: 8, DurationUnit: "meses"},
	}
	require.NoError(t, WriteWorks(w, works))

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Obras")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Nombre", rows[0][0])
	assert.Equal(t, "Ruta 4", rows[1][0])
	assert.Equal(t, "Edificio Central", rows[2][0])
}

func TestMultiSheetWorkbook(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	require.NoError(t, WriteWorks(w, nil))
	require.NoError(t, WritePersonnel(w, []model.Employee{
		{FullName: "Juan Pérez", DNI: "30123456", Location: model.LocationOficina, State: model.EmploymentActive},
	}))
	require.NoError(t, WriteCashBoxes(w, []model.CashBox{
		{OpeningDate: "2024-06-01", ClosingDate: "2024-06-30", OpeningAmount: 50000, TotalExpenses: 12000, FinalBalance: 38000, ClosedBy: model.RoleCompras},
	}))

	var buf bytes.Buffer
	require.NoError(t, w.Save(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Obras", "Nómina", "Caja Chica"}, f.GetSheetList())

	rows, err := f.GetRows("Caja Chica")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-06-01", rows[1][0])
}
