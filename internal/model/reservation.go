package model

import "time"

// Reservation is a booked interval of the single shared meeting room.
// Date is "YYYY-MM-DD", times are "HH:MM" in 24-hour form. Intervals are
// half-open [StartTime, EndTime): back-to-back reservations may share a
// boundary instant without conflicting.
type Reservation struct {
	ID          string    `json:"id"`
	Date        string    `json:"fecha"`
	StartTime   string    `json:"horaInicio"`
	EndTime     string    `json:"horaFin"`
	Responsible string    `json:"responsable"`
	Subject     string    `json:"tema"`
	CreatedBy   Role      `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
