// Package export renders back-office collections as Excel workbooks for
// the monthly reporting the administration asks for.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Anedula/NioiAccess/internal/model"
)

// Writer builds a workbook sheet by sheet.
type Writer struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

// NewWriter creates an empty workbook.
func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// AddSheet starts a new sheet with the given name.
func (w *Writer) AddSheet(name string) error {
	// Truncate sheet name to 31 chars (Excel limit)
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		// Rename default sheet
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *Writer) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}

	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *Writer) WriteRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

// Save writes the workbook to wr.
func (w *Writer) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// Close releases resources.
func (w *Writer) Close() error {
	return w.file.Close()
}

// WriteWorks fills an "Obras" sheet.
func WriteWorks(w *Writer, works []model.Work) error {
	if err := w.AddSheet("Obras"); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{
		"Nombre", "Ubicación", "Comitente", "Estado", "Año Licitación",
		"Monto Oferta", "Moneda", "Duración", "Empresa Adjudicada",
	}); err != nil {
		return err
	}
	for _, obra := range works {
		if err := w.WriteRow([]interface{}{
			obra.Name, obra.Location, obra.Client, string(obra.State), obra.TenderYear,
			obra.OfferAmount, obra.Currency,
			fmt.Sprintf("%d %s", obra.Duration, obra.DurationUnit),
			obra.AwardedCompany,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WritePersonnel fills a "Nómina" sheet.
func WritePersonnel(w *Writer, employees []model.Employee) error {
	if err := w.AddSheet("Nómina"); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{
		"Nombre Completo", "DNI", "Ubicación", "Contratación",
		"Obra Social", "Estado", "Fecha Baja",
	}); err != nil {
		return err
	}
	for _, e := range employees {
		if err := w.WriteRow([]interface{}{
			e.FullName, e.DNI, string(e.Location), string(e.ContractLine),
			e.HealthInsurance, string(e.State), e.TerminationDate,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteCashBoxes fills a "Caja Chica" sheet with the archived cajas.
func WriteCashBoxes(w *Writer, boxes []model.CashBox) error {
	if err := w.AddSheet("Caja Chica"); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{
		"Apertura", "Cierre", "Monto Inicial", "Total Egresos", "Saldo Final", "Cerrada Por",
	}); err != nil {
		return err
	}
	for _, b := range boxes {
		if err := w.WriteRow([]interface{}{
			b.OpeningDate, b.ClosingDate, b.OpeningAmount,
			b.TotalExpenses, b.FinalBalance, string(b.ClosedBy),
		}); err != nil {
			return err
		}
	}
	return nil
}
