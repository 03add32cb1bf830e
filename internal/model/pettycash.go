package model

import "time"

// ExpenseKind classifies a petty-cash expense.
type ExpenseKind string

const (
	ExpenseTravel      ExpenseKind = "Viáticos"
	ExpenseFuel        ExpenseKind = "Combustible"
	ExpenseOfficeGoods ExpenseKind = "Insumos de Oficina"
	ExpenseCleaning    ExpenseKind = "Limpieza"
	ExpenseMaintenance ExpenseKind = "Mantenimiento"
	ExpenseNotary      ExpenseKind = "Gastos Notariales"
	ExpenseOther       ExpenseKind = "Otro"
)

// Expense is a single petty-cash outflow, in ARS.
type Expense struct {
	ID     string      `json:"id"`
	Date   string      `json:"fecha"`
	Kind   ExpenseKind `json:"tipoGasto"`
	Detail string      `json:"detalleGasto,omitempty"`
	Amount float64     `json:"monto"`
}

// CashBox is one caja chica period: opened with an initial amount, drained
// by expenses, then closed and archived. TotalExpenses and FinalBalance are
// computed at close time and zero before that.
type CashBox struct {
	ID            string     `json:"id"`
	OpeningDate   string     `json:"fechaApertura"`
	OpeningAmount float64    `json:"montoInicial"`
	Expenses      []Expense  `json:"egresos"`
	ClosingDate   string     `json:"fechaCierre,omitempty"`
	TotalExpenses float64    `json:"totalEgresos,omitempty"`
	FinalBalance  float64    `json:"saldoFinal,omitempty"`
	CreatedBy     Role       `json:"createdBy,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ClosedBy      Role       `json:"closedBy,omitempty"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
}

// Balance is the opening amount minus every recorded expense.
func (c *CashBox) Balance() float64 {
	balance := c.OpeningAmount
	for _, e := range c.Expenses {
		balance -= e.Amount
	}
	return balance
}

// IsClosed reports whether the caja has been closed out.
func (c *CashBox) IsClosed() bool {
	return c.ClosingDate != ""
}
