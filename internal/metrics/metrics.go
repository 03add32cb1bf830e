package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nioi_backoffice",
			Name:      "reservation_created_total",
			Help:      "Count of meeting-room reservation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	reservationDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nioi_backoffice",
			Name:      "reservation_deleted_total",
			Help:      "Count of meeting-room reservations deleted.",
		},
	)

	cashBoxEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nioi_backoffice",
			Name:      "cashbox_events_total",
			Help:      "Count of petty-cash box openings and closures.",
		},
		[]string{"event"},
	)

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nioi_backoffice",
			Name:      "login_attempts_total",
			Help:      "Count of role login attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationDeleted, cashBoxEvents, loginAttempts)
	})
}

func IncReservationCreated(outcome string) {
	reservationCreated.WithLabelValues(outcome).Inc()
}

func IncReservationDeleted() {
	reservationDeleted.Inc()
}

func IncCashBoxEvent(event string) {
	cashBoxEvents.WithLabelValues(event).Inc()
}

func IncLoginAttempt(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}
