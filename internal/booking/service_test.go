package booking

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anedula/NioiAccess/internal/model"
	"github.com/Anedula/NioiAccess/internal/slots"
	"github.com/Anedula/NioiAccess/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	st, err := store.NewFileStore(t.TempDir(), &logger)
	require.NoError(t, err)
	svc, err := NewService(context.Background(), st, nil, DefaultWorkingHours(), &logger)
	require.NoError(t, err)
	return svc, st
}

func mustCreate(t *testing.T, svc *Service, date, start, end string) *model.Reservation {
	t.Helper()
	res, err := svc.Create(context.Background(), CreateInput{
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Responsible: "Ana",
		Subject:     "Planning",
		CreatedBy:   model.RoleAdministracion,
	})
	require.NoError(t, err)
	return res
}

func TestCandidateSlotsOnEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	candidates := svc.CandidateSlots()
	assert.Len(t, candidates, 20)
	assert.Equal(t, "08:00", candidates[0])
	assert.Equal(t, "17:30", candidates[19])

	assert.True(t, svc.IsSlotAvailable("2024-06-10", "08:00", "08:30", ""))
}

func TestCreateThenAvailability(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "2024-06-10", "09:00", "10:00")

	// Overlapping slot is taken.
	assert.False(t, svc.IsSlotAvailable("2024-06-10", "09:30", "10:30", ""))
	// Touching slot is free: half-open intervals share the boundary.
	assert.True(t, svc.IsSlotAvailable("2024-06-10", "10:00", "10:30", ""))
	// Same times on another date are unaffected.
	assert.True(t, svc.IsSlotAvailable("2024-06-11", "09:00", "10:00", ""))
}

func TestCreateInvalidInterval(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "2024-06-10", "09:00", "10:00")

	_, err := svc.Create(context.Background(), CreateInput{
		Date:        "2024-06-10",
		StartTime:   "09:30",
		EndTime:     "09:15",
		Responsible: "Ana",
		Subject:     "Planning",
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.Len(t, svc.ListForDate("2024-06-10"), 1)

	// Zero-length interval is invalid too.
	_, err = svc.Create(context.Background(), CreateInput{
		Date:        "2024-06-10",
		StartTime:   "11:00",
		EndTime:     "11:00",
		Responsible: "Ana",
		Subject:     "Planning",
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCreateConflict(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "2024-06-10", "09:00", "10:00")

	_, err := svc.Create(context.Background(), CreateInput{
		Date:        "2024-06-10",
		StartTime:   "09:30",
		EndTime:     "10:30",
		Responsible: "Luis",
		Subject:     "Review",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Len(t, svc.ListForDate("2024-06-10"), 1)
}

func TestCreateMissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Date:      "2024-06-10",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Empty(t, svc.ListForDate("2024-06-10"))
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	res := mustCreate(t, svc, "2024-06-10", "09:00", "10:00")

	require.NoError(t, svc.Delete(context.Background(), res.ID, model.RoleComercial))
	assert.Empty(t, svc.ListForDate("2024-06-10"))

	err := svc.Delete(context.Background(), res.ID, model.RoleComercial)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSameTimesOnDifferentDates(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "2024-06-10", "09:00", "10:00")
	mustCreate(t, svc, "2024-06-11", "09:00", "10:00")

	assert.Len(t, svc.ListForDate("2024-06-10"), 1)
	assert.Len(t, svc.ListForDate("2024-06-11"), 1)
}

func TestListForDateOrderedAndIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "2024-06-10", "14:00", "15:00")
	mustCreate(t, svc, "2024-06-10", "08:30", "09:00")
	mustCreate(t, svc, "2024-06-10", "10:00", "11:00")

	first := svc.ListForDate("2024-06-10")
	second := svc.ListForDate("2024-06-10")
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, "08:30", first[0].StartTime)
	assert.Equal(t, "10:00", first[1].StartTime)
	assert.Equal(t, "14:00", first[2].StartTime)
}

// After any successful creation no two same-date reservations overlap.
func TestNoOverlapInvariantUnderCreation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	attempts := []struct{ start, end string }{
		{"08:00", "09:00"},
		{"08:30", "09:30"}, // conflicts
		{"09:00", "09:30"},
		{"09:15", "10:15"}, // conflicts
		{"10:00", "12:00"},
		{"11:00", "11:30"}, // conflicts
		{"12:00", "12:30"},
	}

	for _, a := range attempts {
		_, err := svc.Create(ctx, CreateInput{
			Date:        "2024-06-10",
			StartTime:   a.start,
			EndTime:     a.end,
			Responsible: "Ana",
			Subject:     "Planning",
		})
		if err != nil {
			assert.ErrorIs(t, err, ErrSlotConflict)
		}

		day := svc.ListForDate("2024-06-10")
		for i := 0; i < len(day); i++ {
			for j := i + 1; j < len(day); j++ {
				assert.False(t, slots.Overlaps(day[i].StartTime, day[i].EndTime, day[j].StartTime, day[j].EndTime),
					"reservations %s-%s and %s-%s overlap", day[i].StartTime, day[i].EndTime, day[j].StartTime, day[j].EndTime)
			}
		}
	}

	assert.Len(t, svc.ListForDate("2024-06-10"), 4)
}

func TestIsSlotAvailableExcludesSelf(t *testing.T) {
	svc, _ := newTestService(t)
	res := mustCreate(t, svc, "2024-06-10", "09:00", "10:00")

	// The reservation's own slot reads as taken unless it excludes itself.
	assert.False(t, svc.IsSlotAvailable("2024-06-10", "09:00", "10:00", ""))
	assert.True(t, svc.IsSlotAvailable("2024-06-10", "09:00", "10:00", res.ID))
}

func TestIsSlotAvailableDegenerateInterval(t *testing.T) {
	svc, _ := newTestService(t)

	assert.False(t, svc.IsSlotAvailable("2024-06-10", "10:00", "10:00", ""))
	assert.False(t, svc.IsSlotAvailable("2024-06-10", "10:00", "09:00", ""))
	assert.False(t, svc.IsSlotAvailable("2024-06-10", "bogus", "10:00", ""))
}

func TestOutsideWorkingHoursAccepted(t *testing.T) {
	svc, _ := newTestService(t)

	// Working hours only shape slot suggestions: the store accepts any
	// valid non-overlapping interval.
	res := mustCreate(t, svc, "2024-06-10", "22:00", "23:00")
	assert.NotEmpty(t, res.ID)
}

func TestPersistenceRoundTrip(t *testing.T) {
	logger := zerolog.New(io.Discard)
	st, err := store.NewFileStore(t.TempDir(), &logger)
	require.NoError(t, err)
	ctx := context.Background()

	svc, err := NewService(ctx, st, nil, DefaultWorkingHours(), &logger)
	require.NoError(t, err)
	created := mustCreate(t, svc, "2024-06-10", "09:00", "10:00")
	mustCreate(t, svc, "2024-06-11", "08:00", "08:30")

	// A fresh service over the same store sees the same collection.
	reloaded, err := NewService(ctx, st, nil, DefaultWorkingHours(), &logger)
	require.NoError(t, err)
	assert.Equal(t, svc.All(), reloaded.All())

	day := reloaded.ListForDate("2024-06-10")
	require.Len(t, day, 1)
	assert.Equal(t, created.ID, day[0].ID)

	// The persisted blob is the plain JSON array of reservations.
	data, err := st.Load(ctx, store.CollectionReservations)
	require.NoError(t, err)
	var raw []model.Reservation
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 2)
}
