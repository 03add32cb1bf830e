// Package server exposes the back office over a JSON HTTP API. The acting
// role travels in the X-Nioi-Role header; there are no user sessions
// beyond the role itself.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Anedula/NioiAccess/internal/attendance"
	"github.com/Anedula/NioiAccess/internal/audit"
	"github.com/Anedula/NioiAccess/internal/auth"
	"github.com/Anedula/NioiAccess/internal/booking"
	"github.com/Anedula/NioiAccess/internal/metrics"
	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/personnel"
	"github.com/Anedula/NioiAccess/internal/pettycash"
	"github.com/Anedula/NioiAccess/internal/pricing"
	"github.com/Anedula/NioiAccess/internal/works"
)

const roleHeader = "X-Nioi-Role"

// Pinger reports storage health for the readiness endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server wires the domain services to HTTP handlers.
type Server struct {
	booking    *booking.Service
	works      *works.Service
	personnel  *personnel.Service
	attendance *attendance.Service
	pricing    *pricing.Service
	pettycash  *pettycash.Service
	audit      *audit.Service
	pinger     Pinger
	logger     *zerolog.Logger

	loginRate  rate.Limit
	loginBurst int
	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

// Config carries the server-level knobs.
type Config struct {
	LoginRatePerMinute int
	LoginBurst         int
}

// New builds the server. pinger may be nil when the backend has no health
// probe (the file store).
func New(
	bookingSvc *booking.Service,
	worksSvc *works.Service,
	personnelSvc *personnel.Service,
	attendanceSvc *attendance.Service,
	pricingSvc *pricing.Service,
	pettycashSvc *pettycash.Service,
	auditSvc *audit.Service,
	pinger Pinger,
	cfg Config,
	logger *zerolog.Logger,
) *Server {
	if cfg.LoginRatePerMinute <= 0 {
		cfg.LoginRatePerMinute = 10
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = 5
	}
	return &Server{
		booking:    bookingSvc,
		works:      worksSvc,
		personnel:  personnelSvc,
		attendance: attendanceSvc,
		pricing:    pricingSvc,
		pettycash:  pettycashSvc,
		audit:      auditSvc,
		pinger:     pinger,
		logger:     logger,
		loginRate:  rate.Limit(float64(cfg.LoginRatePerMinute) / 60.0),
		loginBurst: cfg.LoginBurst,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/roles", s.handleRoles)

	mux.HandleFunc("GET /api/reservas", s.handleListReservations)
	mux.HandleFunc("GET /api/reservas/slots", s.handleSlots)
	mux.HandleFunc("POST /api/reservas", s.handleCreateReservation)
	mux.HandleFunc("DELETE /api/reservas/{id}", s.handleDeleteReservation)

	mux.HandleFunc("GET /api/obras", s.handleListWorks)
	mux.HandleFunc("POST /api/obras", s.handleAddWork)
	mux.HandleFunc("GET /api/obras/{id}", s.handleGetWork)
	mux.HandleFunc("PUT /api/obras/{id}", s.handleUpdateWork)

	mux.HandleFunc("GET /api/personal", s.handleListPersonnel)
	mux.HandleFunc("POST /api/personal", s.handleAddEmployee)
	mux.HandleFunc("GET /api/personal/{id}", s.handleGetEmployee)
	mux.HandleFunc("PUT /api/personal/{id}", s.handleUpdateEmployee)
	mux.HandleFunc("POST /api/personal/{id}/baja", s.handleDeactivateEmployee)

	mux.HandleFunc("GET /api/asistencias", s.handleListAttendance)
	mux.HandleFunc("PUT /api/asistencias", s.handleRecordAttendance)

	mux.HandleFunc("GET /api/pedidos-precios", s.handleListPriceRequests)
	mux.HandleFunc("POST /api/pedidos-precios", s.handleCreatePriceRequest)
	mux.HandleFunc("PUT /api/pedidos-precios/{id}", s.handleUpdatePriceRequest)
	mux.HandleFunc("PUT /api/pedidos-precios/{id}/precios", s.handleUpdatePricing)
	mux.HandleFunc("DELETE /api/pedidos-precios/{id}", s.handleDeletePriceRequest)

	mux.HandleFunc("GET /api/caja-chica", s.handleActiveCashBox)
	mux.HandleFunc("POST /api/caja-chica/abrir", s.handleOpenCashBox)
	mux.HandleFunc("POST /api/caja-chica/cerrar", s.handleCloseCashBox)
	mux.HandleFunc("GET /api/caja-chica/archivadas", s.handleArchivedCashBoxes)
	mux.HandleFunc("POST /api/caja-chica/egresos", s.handleAddExpense)
	mux.HandleFunc("PUT /api/caja-chica/egresos/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/caja-chica/egresos/{id}", s.handleRemoveExpense)

	mux.HandleFunc("GET /api/export.xlsx", s.handleExport)

	mux.HandleFunc("GET /api/auditoria", s.handleAuditLog)
	mux.HandleFunc("GET /api/auditoria.xlsx", s.handleAuditExport)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return mux
}

// Run serves the API on port until ctx is done.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Int("port", port).Msg("API server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) limiterFor(remoteAddr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()

	lim, ok := s.limiters[host]
	if !ok {
		lim = rate.NewLimiter(s.loginRate, s.loginBurst)
		s.limiters[host] = lim
	}
	return lim
}

func (s *Server) actingRole(r *http.Request) (model.Role, bool) {
	role := model.Role(r.Header.Get(roleHeader))
	return role, role.IsValid()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctxPing, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.pinger.PingContext(ctxPing); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.AllRoles)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limiterFor(r.RemoteAddr).Allow() {
		metrics.IncLoginAttempt("throttled")
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req struct {
		Role     model.Role `json:"role"`
		Password string     `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if !auth.ValidatePassword(req.Role, req.Password) {
		metrics.IncLoginAttempt("rejected")
		writeError(w, http.StatusUnauthorized, errors.New("invalid role or password"))
		return
	}

	metrics.IncLoginAttempt("accepted")
	writeJSON(w, http.StatusOK, map[string]model.Role{"role": req.Role})
}
