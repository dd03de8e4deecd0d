//go:build unit

package availability_test

import (
	"testing"
	"time"

	"giveflow/internal/domain/availability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday.
func date(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func mustDecode(t *testing.T, spec string) availability.WeeklyAvailability {
	t.Helper()
	table, err := availability.Decode(spec)
	require.NoError(t, err)
	return table
}

func TestHourChoices(t *testing.T) {
	t.Run("officeHours weekday skips noon", func(t *testing.T) {
		table := mustDecode(t, "officeHours 09:00_17:00 mon_tue_wed_thu_fri")

		choices := table.HourChoices(date(2))
		hours := make([]int, len(choices))
		for i, c := range choices {
			hours[i] = c.Hour
		}
		assert.Equal(t, []int{9, 10, 11, 13, 14, 15, 16}, hours)
	})

	t.Run("boundary hours clip to the window edges", func(t *testing.T) {
		table := mustDecode(t, "customPerDay 09:30_17:00 mon")

		choices := table.HourChoices(date(2))
		require.NotEmpty(t, choices)

		first := choices[0]
		assert.Equal(t, 9, first.Hour)
		assert.Equal(t, 30, first.MinuteStart)
		assert.Equal(t, 59, first.MinuteEnd)

		last := choices[len(choices)-1]
		assert.Equal(t, 16, last.Hour)
		assert.Equal(t, 0, last.MinuteStart)
		assert.Equal(t, 59, last.MinuteEnd)
	})

	t.Run("noon survives outside the officeHours preset", func(t *testing.T) {
		table := mustDecode(t, "customPerDay 09:00_17:00 mon")

		choices := table.HourChoices(date(2))
		hours := make([]int, len(choices))
		for i, c := range choices {
			hours[i] = c.Hour
		}
		assert.Contains(t, hours, 12)
	})

	t.Run("day without a window yields no choices", func(t *testing.T) {
		table := mustDecode(t, "customPerDay 08:00_12:00 mon | 14:30_18:00 fri")
		// March 3rd 2026 is a Tuesday.
		assert.Empty(t, table.HourChoices(date(3)))
	})
}

func TestMinuteChoices(t *testing.T) {
	table := mustDecode(t, "customPerDay 09:30_17:00 mon")

	t.Run("first hour starts at the window edge", func(t *testing.T) {
		minutes := table.MinuteChoices(date(2), 9)
		require.Len(t, minutes, 30)
		assert.Equal(t, 30, minutes[0])
		assert.Equal(t, 59, minutes[len(minutes)-1])
	})

	t.Run("interior hour spans the full hour", func(t *testing.T) {
		minutes := table.MinuteChoices(date(2), 12)
		assert.Len(t, minutes, 60)
	})

	t.Run("hour outside the window has no minutes", func(t *testing.T) {
		assert.Nil(t, table.MinuteChoices(date(2), 17))
	})
}

func TestIsWithinWindow(t *testing.T) {
	table := mustDecode(t, "officeHours 09:00_17:00 mon_tue_wed_thu_fri")

	cases := []struct {
		name   string
		hour   int
		minute int
		want   bool
	}{
		{"window start is selectable", 9, 0, true},
		{"last minute before end is selectable", 16, 59, true},
		{"end instant is excluded", 17, 0, false},
		{"before the window", 8, 59, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, table.IsWithinWindow(date(2), c.hour, c.minute))
		})
	}

	t.Run("weekend is outside for a weekday table", func(t *testing.T) {
		// March 7th 2026 is a Saturday.
		assert.False(t, table.IsWithinWindow(date(7), 10, 0))
	})
}

func TestBusyIntervals(t *testing.T) {
	busy := []availability.BusyInterval{
		{Date: date(2), StartMinute: 10 * 60, EndMinute: 10*60 + 45},
	}

	t.Run("bounds are inclusive on both ends", func(t *testing.T) {
		assert.True(t, availability.IsBusy(busy, date(2), 10, 0))
		assert.True(t, availability.IsBusy(busy, date(2), 10, 45))
		assert.False(t, availability.IsBusy(busy, date(2), 9, 59))
		assert.False(t, availability.IsBusy(busy, date(2), 10, 46))
	})

	t.Run("interval only blocks its own calendar day", func(t *testing.T) {
		assert.False(t, availability.IsBusy(busy, date(9), 10, 15))
	})
}

func TestNewBusyInterval(t *testing.T) {
	t.Run("spans the appointment minute plus the slot duration", func(t *testing.T) {
		b := availability.NewBusyInterval(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), 30)

		assert.True(t, availability.IsBusy([]availability.BusyInterval{b}, date(2), 10, 0))
		assert.True(t, availability.IsBusy([]availability.BusyInterval{b}, date(2), 10, 30))
		assert.False(t, availability.IsBusy([]availability.BusyInterval{b}, date(2), 10, 31))
	})

	t.Run("offset instants bucket to their UTC day", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*60*60)
		// 2026-03-03 00:30 JST is 2026-03-02 15:30 UTC.
		b := availability.NewBusyInterval(time.Date(2026, 3, 3, 0, 30, 0, 0, jst), 30)

		assert.True(t, availability.IsBusy([]availability.BusyInterval{b}, date(2), 15, 30))
		assert.False(t, availability.IsBusy([]availability.BusyInterval{b}, date(3), 0, 30))
	})
}

func TestValidate(t *testing.T) {
	table := mustDecode(t, "officeHours 09:00_17:00 mon_tue_wed_thu_fri")
	busy := []availability.BusyInterval{
		{Date: date(2), StartMinute: 10 * 60, EndMinute: 10*60 + 45},
	}

	cases := []struct {
		name   string
		hour   int
		minute int
		errIs  error
	}{
		{"free in-window instant", 14, 0, nil},
		{"negative hour", -1, 0, availability.ErrIncompleteSelection},
		{"minute out of range", 10, 60, availability.ErrIncompleteSelection},
		{"outside the window", 17, 0, availability.ErrOutsideAvailability},
		{"busy instant", 10, 30, availability.ErrBusy},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := table.Validate(busy, date(2), c.hour, c.minute)
			if c.errIs == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}

	t.Run("window check precedes busy check", func(t *testing.T) {
		blocked := []availability.BusyInterval{
			{Date: date(2), StartMinute: 0, EndMinute: 24*60 - 1},
		}
		err := table.Validate(blocked, date(2), 18, 0)
		require.ErrorIs(t, err, availability.ErrOutsideAvailability)
	})
}

func TestNextValidDate(t *testing.T) {
	t.Run("reference date qualifies when its weekday has a window", func(t *testing.T) {
		table := mustDecode(t, "officeHours 09:00_17:00 mon_tue_wed_thu_fri")
		got, err := table.NextValidDate(date(2))
		require.NoError(t, err)
		assert.Equal(t, date(2), got)
	})

	t.Run("scan rolls forward to the next selectable weekday", func(t *testing.T) {
		table := mustDecode(t, "customPerDay 14:30_18:00 fri")
		got, err := table.NextValidDate(date(2))
		require.NoError(t, err)
		assert.Equal(t, time.Friday, got.Weekday())
		assert.Equal(t, date(6), got)
	})

	t.Run("empty table has no selectable day", func(t *testing.T) {
		var table availability.WeeklyAvailability
		_, err := table.NextValidDate(date(2))
		require.ErrorIs(t, err, availability.ErrNoSelectableDay)
	})
}
