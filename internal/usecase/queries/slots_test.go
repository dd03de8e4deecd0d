//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"giveflow/internal/domain/availability"
	"giveflow/internal/pkg/clock"
	"giveflow/internal/pkg/errs"
	"giveflow/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type fakeAvailabilitySource struct {
	specs map[uuid.UUID]string
}

func (s *fakeAvailabilitySource) AvailabilitySpec(_ context.Context, itemID uuid.UUID) (string, error) {
	spec, ok := s.specs[itemID]
	if !ok {
		return "", errs.New("no such item")
	}
	return spec, nil
}

type fakeBusySource struct {
	intervals []availability.BusyInterval
}

func (s *fakeBusySource) BusyIntervalsByItem(context.Context, uuid.UUID) ([]availability.BusyInterval, error) {
	return s.intervals, nil
}

func newSlotQueries(spec string, busy []availability.BusyInterval, now time.Time) (queries.SlotQueries, uuid.UUID) {
	itemID := uuid.New()
	return queries.NewSlotQueries(
		&fakeAvailabilitySource{specs: map[uuid.UUID]string{itemID: spec}},
		&fakeBusySource{intervals: busy},
		clock.NewMockClock(now),
	), itemID
}

func TestSlotOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("free hours offer their full minute range", func(t *testing.T) {
		q, itemID := newSlotQueries("officeHours 09:00_11:00 mon", nil, monday)

		opts, err := q.Options(ctx, itemID, monday)
		require.NoError(t, err)

		assert.True(t, opts.Date.Equal(monday))
		assert.Equal(t, []time.Weekday{time.Monday}, opts.ValidDays)
		require.Len(t, opts.Hours, 2)

		assert.Equal(t, 9, opts.Hours[0].Hour)
		assert.Len(t, opts.Hours[0].Minutes, 60)
		assert.False(t, opts.Hours[0].Busy)
	})

	t.Run("busy intervals thin out the minute choices", func(t *testing.T) {
		busy := []availability.BusyInterval{
			{Date: monday, StartMinute: 9 * 60, EndMinute: 9*60 + 29},
		}
		q, itemID := newSlotQueries("officeHours 09:00_11:00 mon", busy, monday)

		opts, err := q.Options(ctx, itemID, monday)
		require.NoError(t, err)

		nine := opts.Hours[0]
		assert.Len(t, nine.Minutes, 30)
		assert.Equal(t, 30, nine.Minutes[0])
		assert.False(t, nine.Busy)
	})

	t.Run("fully booked hour is flagged busy", func(t *testing.T) {
		busy := []availability.BusyInterval{
			{Date: monday, StartMinute: 9 * 60, EndMinute: 9*60 + 59},
		}
		q, itemID := newSlotQueries("officeHours 09:00_11:00 mon", busy, monday)

		opts, err := q.Options(ctx, itemID, monday)
		require.NoError(t, err)

		assert.True(t, opts.Hours[0].Busy)
		assert.Empty(t, opts.Hours[0].Minutes)
		assert.False(t, opts.Hours[1].Busy)
	})

	t.Run("unknown item", func(t *testing.T) {
		q, _ := newSlotQueries("allDay", nil, monday)
		_, err := q.Options(ctx, uuid.New(), monday)
		require.ErrorIs(t, err, queries.ErrItemNotFound)
	})

	t.Run("unparseable spec surfaces the codec error", func(t *testing.T) {
		q, itemID := newSlotQueries("whenever", nil, monday)
		_, err := q.Options(ctx, itemID, monday)
		require.ErrorIs(t, err, availability.ErrMalformedAvailability)
	})
}

func TestNextDate(t *testing.T) {
	ctx := context.Background()

	t.Run("today qualifies when its weekday has a window", func(t *testing.T) {
		q, itemID := newSlotQueries("officeHours 09:00_17:00 mon_tue_wed_thu_fri", nil, monday)

		got, err := q.NextDate(ctx, itemID)
		require.NoError(t, err)
		assert.True(t, got.Equal(monday))
	})

	t.Run("scan rolls to the next selectable weekday", func(t *testing.T) {
		q, itemID := newSlotQueries("customPerDay 14:30_18:00 fri", nil, monday)

		got, err := q.NextDate(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, time.Friday, got.Weekday())
	})
}
