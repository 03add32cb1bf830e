package remind

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Anedula/NioiAccess/internal/model"
)

type fixedLister struct {
	reservations []model.Reservation
}

func (f *fixedLister) ListForDate(string) []model.Reservation {
	return f.reservations
}

type captureNotifier struct {
	messages []string
	err      error
}

func (c *captureNotifier) Notify(text string) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, text)
	return nil
}

func newTestService(lister ReservationLister, notifier Notifier, at time.Time) *Service {
	logger := zerolog.New(io.Discard)
	svc := NewService(lister, notifier, DefaultConfig(), &logger)
	svc.now = func() time.Time { return at }
	return svc
}

func TestReminderFiresInsideWindow(t *testing.T) {
	at := time.Date(2026, 9, 3, 9, 50, 0, 0, time.UTC)
	lister := &fixedLister{reservations: []model.Reservation{
		{ID: "r1", Date: "2026-09-03", StartTime: "10:00", EndTime: "11:00", Responsible: "Ana", Subject: "Licitación"},
	}}
	notifier := &captureNotifier{}

	svc := newTestService(lister, notifier, at)
	svc.CheckOnce()

	assert.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "10:00")
	assert.Contains(t, notifier.messages[0], "Ana")
}

func TestReminderSentOnlyOnce(t *testing.T) {
	at := time.Date(2026, 9, 3, 9, 50, 0, 0, time.UTC)
	lister := &fixedLister{reservations: []model.Reservation{
		{ID: "r1", Date: "2026-09-03", StartTime: "10:00", EndTime: "11:00", Responsible: "Ana", Subject: "Licitación"},
	}}
	notifier := &captureNotifier{}

	svc := newTestService(lister, notifier, at)
	svc.CheckOnce()
	svc.CheckOnce()

	assert.Len(t, notifier.messages, 1)
}

func TestReminderSkipsOutsideWindow(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
	}{
		{"too early", time.Date(2026, 9, 3, 9, 30, 0, 0, time.UTC)},
		{"already started", time.Date(2026, 9, 3, 10, 5, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fixedLister{reservations: []model.Reservation{
				{ID: "r1", Date: "2026-09-03", StartTime: "10:00", EndTime: "11:00", Responsible: "Ana", Subject: "Licitación"},
			}}
			notifier := &captureNotifier{}

			svc := newTestService(lister, notifier, tt.at)
			svc.CheckOnce()

			assert.Empty(t, notifier.messages)
		})
	}
}

func TestFailedDeliveryRetriesNextScan(t *testing.T) {
	at := time.Date(2026, 9, 3, 9, 50, 0, 0, time.UTC)
	lister := &fixedLister{reservations: []model.Reservation{
		{ID: "r1", Date: "2026-09-03", StartTime: "10:00", EndTime: "11:00", Responsible: "Ana", Subject: "Licitación"},
	}}
	notifier := &captureNotifier{err: assert.AnError}

	svc := newTestService(lister, notifier, at)
	svc.CheckOnce()
	assert.Empty(t, notifier.messages)

	// Delivery recovers; the reminder is retried.
	notifier.err = nil
	svc.CheckOnce()
	assert.Len(t, notifier.messages, 1)
}

func TestBadStartTimeIgnored(t *testing.T) {
	at := time.Date(2026, 9, 3, 9, 50, 0, 0, time.UTC)
	lister := &fixedLister{reservations: []model.Reservation{
		{ID: "r1", Date: "2026-09-03", StartTime: "not-a-time", EndTime: "11:00"},
	}}
	notifier := &captureNotifier{}

	svc := newTestService(lister, notifier, at)
	svc.CheckOnce()

	assert.Empty(t, notifier.messages)
}
