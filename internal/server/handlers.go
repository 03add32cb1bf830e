package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Anedula/NioiAccess/internal/attendance"
	"github.com/Anedula/NioiAccess/internal/booking"
	"github.com/Anedula/NioiAccess/internal/export"
	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/personnel"
	"github.com/Anedula/NioiAccess/internal/pettycash"
	"github.com/Anedula/NioiAccess/internal/pricing"
	"github.com/Anedula/NioiAccess/internal/slots"
	"github.com/Anedula/NioiAccess/internal/works"
)

// statusFor maps the services' sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, works.ErrNotFound),
		errors.Is(err, personnel.ErrNotFound),
		errors.Is(err, pricing.ErrNotFound),
		errors.Is(err, pettycash.ErrExpenseNotFound),
		errors.Is(err, pettycash.ErrNoActiveBox):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSlotConflict),
		errors.Is(err, personnel.ErrDuplicateDNI),
		errors.Is(err, personnel.ErrAlreadyInactive),
		errors.Is(err, pettycash.ErrBoxAlreadyOpen):
		return http.StatusConflict
	case errors.Is(err, pricing.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrInvalidInterval),
		errors.Is(err, booking.ErrMissingField),
		errors.Is(err, works.ErrInvalidState),
		errors.Is(err, works.ErrMissingField),
		errors.Is(err, personnel.ErrMissingField),
		errors.Is(err, personnel.ErrInvalidLocation),
		errors.Is(err, attendance.ErrInvalidState),
		errors.Is(err, attendance.ErrMissingField),
		errors.Is(err, pricing.ErrMissingField),
		errors.Is(err, pettycash.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) requireRole(w http.ResponseWriter, r *http.Request) (model.Role, bool) {
	role, ok := s.actingRole(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, errors.New("missing or unknown role header"))
	}
	return role, ok
}

// --- reservas ---

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	if date := r.URL.Query().Get("fecha"); date != "" {
		writeJSON(w, http.StatusOK, s.booking.ListForDate(date))
		return
	}
	writeJSON(w, http.StatusOK, s.booking.All())
}

// handleSlots returns the suggested half-hour grid for a date, each slot
// annotated with whether it is currently free.
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("fecha")
	if date == "" {
		writeError(w, http.StatusBadRequest, errors.New("fecha is required"))
		return
	}

	type slotStatus struct {
		Start     string `json:"horaInicio"`
		Available bool   `json:"disponible"`
	}

	candidates := s.booking.CandidateSlots()
	interval := s.booking.SlotMinutes()

	out := make([]slotStatus, 0, len(candidates))
	for _, start := range candidates {
		available := true
		if interval > 0 {
			if begin, err := slots.Parse(start); err == nil {
				available = s.booking.IsSlotAvailable(date, start, slots.Format(begin+interval), "")
			}
		}
		out = append(out, slotStatus{Start: start, Available: available})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}

	var req struct {
		Date        string `json:"fecha"`
		StartTime   string `json:"horaInicio"`
		EndTime     string `json:"horaFin"`
		Responsible string `json:"responsable"`
		Subject     string `json:"tema"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := s.booking.Create(r.Context(), booking.CreateInput{
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Responsible: req.Responsible,
		Subject:     req.Subject,
		CreatedBy:   role,
	})
	if err != nil {
		// A reservation that was accepted but not persisted still stands;
		// report it with the partial-failure flagged in the log only.
		if res != nil {
			s.logger.Warn().Err(err).Str("id", res.ID).Msg("reservation not persisted")
			writeJSON(w, http.StatusCreated, res)
			return
		}
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	if err := s.booking.Delete(r.Context(), r.PathValue("id"), role); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- obras ---

func (s *Server) handleListWorks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if state := q.Get("estado"); state != "" {
		writeJSON(w, http.StatusOK, s.works.ListByState(model.WorkState(state)))
		return
	}
	if yearStr := q.Get("anio"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, s.works.ListByTenderYear(year))
		return
	}
	writeJSON(w, http.StatusOK, s.works.List())
}

func (s *Server) handleAddWork(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	var in works.Input
	if !decode(w, r, &in) {
		return
	}
	work, err := s.works.Add(r.Context(), in, role)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, work)
}

func (s *Server) handleGetWork(w http.ResponseWriter, r *http.Request) {
	work, err := s.works.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, work)
}

func (s *Server) handleUpdateWork(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	var in works.Input
	if !decode(w, r, &in) {
		return
	}
	work, err := s.works.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, work)
}

// --- personal ---

func (s *Server) handleListPersonnel(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("activos") == "true" {
		writeJSON(w, http.StatusOK, s.personnel.ListActive())
		return
	}
	writeJSON(w, http.StatusOK, s.personnel.List())
}

func (s *Server) handleAddEmployee(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	var in personnel.Input
	if !decode(w, r, &in) {
		return
	}
	emp, err := s.personnel.Add(r.Context(), in, role)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := s.personnel.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	var in personnel.Input
	if !decode(w, r, &in) {
		return
	}
	emp, err := s.personnel.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (s *Server) handleDeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	var req struct {
		Date string `json:"fechaBaja"`
	}
	if !decode(w, r, &req) {
		return
	}
	emp, err := s.personnel.Deactivate(r.Context(), r.PathValue("id"), req.Date)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// --- asistencias ---

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if date := q.Get("fecha"); date != "" {
		writeJSON(w, http.StatusOK, s.attendance.ListForDate(date))
		return
	}
	employeeID := q.Get("empleado")
	month := q.Get("mes")
	if employeeID != "" && month != "" {
		writeJSON(w, http.StatusOK, s.attendance.ListForEmployeeMonth(employeeID, month))
		return
	}
	writeError(w, http.StatusBadRequest, errors.New("fecha or empleado+mes is required"))
}

func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	var req struct {
		EmployeeID string                `json:"empleadoId"`
		Date       string                `json:"fecha"`
		State      model.AttendanceState `json:"estado"`
	}
	if !decode(w, r, &req) {
		return
	}
	rec, err := s.attendance.Record(r.Context(), req.EmployeeID, req.Date, req.State, role)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// --- pedidos de precios ---

func (s *Server) handleListPriceRequests(w http.ResponseWriter, r *http.Request) {
	if workID := r.URL.Query().Get("obra"); workID != "" {
		writeJSON(w, http.StatusOK, s.pricing.ListForWork(workID))
		return
	}
	writeJSON(w, http.StatusOK, s.pricing.List())
}

func (s *Server) handleCreatePriceRequest(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	var in pricing.RequestInput
	if !decode(w, r, &in) {
		return
	}
	req, err := s.pricing.Create(r.Context(), in, role)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleUpdatePriceRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	var in pricing.RequestInput
	if !decode(w, r, &in) {
		return
	}
	req, err := s.pricing.UpdateRequest(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	var in pricing.PricingInput
	if !decode(w, r, &in) {
		return
	}
	req, err := s.pricing.UpdatePricing(r.Context(), r.PathValue("id"), in, role)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleDeletePriceRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	if err := s.pricing.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- caja chica ---

func (s *Server) handleActiveCashBox(w http.ResponseWriter, _ *http.Request) {
	box := s.pettycash.Active()
	if box == nil {
		writeError(w, http.StatusNotFound, pettycash.ErrNoActiveBox)
		return
	}
	writeJSON(w, http.StatusOK, box)
}

func (s *Server) handleOpenCashBox(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	var req struct {
		OpeningDate   string  `json:"fechaApertura"`
		OpeningAmount float64 `json:"montoApertura"`
	}
	if !decode(w, r, &req) {
		return
	}
	box, err := s.pettycash.Open(r.Context(), req.OpeningDate, req.OpeningAmount, role)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, box)
}

func (s *Server) handleCloseCashBox(w http.ResponseWriter, r *http.Request) {
	role, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	var req struct {
		ClosingDate string `json:"fechaCierre"`
	}
	if !decode(w, r, &req) {
		return
	}
	box, err := s.pettycash.Close(r.Context(), req.ClosingDate, role)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, box)
}

func (s *Server) handleArchivedCashBoxes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pettycash.ListArchived())
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	var in pettycash.ExpenseInput
	if !decode(w, r, &in) {
		return
	}
	exp, err := s.pettycash.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	var in pettycash.ExpenseInput
	if !decode(w, r, &in) {
		return
	}
	exp, err := s.pettycash.UpdateExpense(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r); !ok {
		return
	}
	if err := s.pettycash.RemoveExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- auditoría ---

func (s *Server) handleAuditLog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.audit.List())
}

func (s *Server) handleAuditExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="registro_actividad.xlsx"`)
	if err := s.audit.ExportTo(w); err != nil {
		s.logger.Error().Err(err).Msg("audit export failed")
	}
}

// --- export ---

// handleExport streams a workbook with the obras, nómina and caja sheets.
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	wr := export.NewWriter()
	defer wr.Close()

	if err := export.WriteWorks(wr, s.works.List()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := export.WritePersonnel(wr, s.personnel.List()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	boxes := s.pettycash.ListArchived()
	if active := s.pettycash.Active(); active != nil {
		boxes = append([]model.CashBox{*active}, boxes...)
	}
	if err := export.WriteCashBoxes(wr, boxes); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="grupo_nioi.xlsx"`)
	if err := wr.Save(w); err != nil {
		s.logger.Error().Err(err).Msg("export write failed")
	}
}
