package availability

import (
	"time"

	"giveflow/internal/pkg/errs"
)

var (
	ErrOutsideAvailability = errs.New("instant outside availability window")
	ErrBusy                = errs.New("instant conflicts with a committed appointment")
	ErrIncompleteSelection = errs.New("hour and minute must both be selected")
	ErrNoSelectableDay     = errs.New("availability table has no selectable day")
)

// noonHour is never offered under the office-hours preset. Replicated
// from observed booking behavior; do not extend to other presets.
const noonHour = 12

// HourChoice is one selectable clock hour with its selectable minute
// bounds, both inclusive. Boundary hours are clipped to the window
// edges; interior hours span the full 0-59.
type HourChoice struct {
	Hour        int
	MinuteStart int
	MinuteEnd   int
}

// BusyInterval blocks bookings for one item on one calendar day.
// Bounds are minutes of day, inclusive on both ends.
type BusyInterval struct {
	Date        time.Time
	StartMinute int
	EndMinute   int
}

// NewBusyInterval buckets an appointment instant into the interval it
// blocks. The instant is normalized to UTC first; date comparisons in
// this package are per-location, and the pickers work in UTC dates.
func NewBusyInterval(at time.Time, durationMin int) BusyInterval {
	at = at.In(time.UTC)
	start := at.Hour()*60 + at.Minute()
	return BusyInterval{
		Date:        at,
		StartMinute: start,
		EndMinute:   start + durationMin,
	}
}

func (b BusyInterval) blocks(date time.Time, minuteOfDay int) bool {
	return sameDate(b.Date, date) && minuteOfDay >= b.StartMinute && minuteOfDay <= b.EndMinute
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ValidDaysOfWeek lists the weekdays present in the table, Monday
// first. Date pickers restrict selection to these.
func (w WeeklyAvailability) ValidDaysOfWeek() []time.Weekday {
	days := make([]time.Weekday, 0, len(w.ranges))
	for _, d := range weekOrder {
		if _, ok := w.ranges[d]; ok {
			days = append(days, d)
		}
	}
	return days
}

// NextValidDate returns the earliest date >= ref whose weekday has a
// window. ref itself qualifies when its weekday does.
func (w WeeklyAvailability) NextValidDate(ref time.Time) (time.Time, error) {
	for i := 0; i < 7; i++ {
		candidate := ref.AddDate(0, 0, i)
		if _, ok := w.ranges[candidate.Weekday()]; ok {
			return candidate, nil
		}
	}
	return time.Time{}, ErrNoSelectableDay
}

// HourChoices enumerates the selectable hours for a date, in clock
// order. Empty when the date's weekday has no window.
func (w WeeklyAvailability) HourChoices(date time.Time) []HourChoice {
	r, ok := w.ranges[date.Weekday()]
	if !ok {
		return nil
	}

	lastMinute := r.endMinute - 1
	firstHour := r.startMinute / 60
	lastHour := lastMinute / 60

	choices := make([]HourChoice, 0, lastHour-firstHour+1)
	for h := firstHour; h <= lastHour; h++ {
		if w.preset == PresetOfficeHours && h == noonHour {
			continue
		}
		c := HourChoice{Hour: h, MinuteStart: 0, MinuteEnd: 59}
		if h == firstHour {
			c.MinuteStart = r.startMinute % 60
		}
		if h == lastHour {
			c.MinuteEnd = lastMinute % 60
		}
		choices = append(choices, c)
	}
	return choices
}

// MinuteChoices lists the selectable minutes within an already-chosen
// hour, narrowing the second step of the two-step picker.
func (w WeeklyAvailability) MinuteChoices(date time.Time, hour int) []int {
	for _, c := range w.HourChoices(date) {
		if c.Hour != hour {
			continue
		}
		minutes := make([]int, 0, c.MinuteEnd-c.MinuteStart+1)
		for m := c.MinuteStart; m <= c.MinuteEnd; m++ {
			minutes = append(minutes, m)
		}
		return minutes
	}
	return nil
}

// IsWithinWindow reports whether hour:minute lies in the date's window.
// A weekday without a window yields false, not an error.
func (w WeeklyAvailability) IsWithinWindow(date time.Time, hour, minute int) bool {
	r, ok := w.ranges[date.Weekday()]
	if !ok {
		return false
	}
	return r.Contains(hour*60 + minute)
}

// IsBusy reports whether the instant falls inside any interval whose
// calendar day matches the date.
func IsBusy(busy []BusyInterval, date time.Time, hour, minute int) bool {
	minuteOfDay := hour*60 + minute
	for _, b := range busy {
		if b.blocks(date, minuteOfDay) {
			return true
		}
	}
	return false
}

// Validate gates a candidate instant before it may join a request.
func (w WeeklyAvailability) Validate(busy []BusyInterval, date time.Time, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ErrIncompleteSelection
	}
	if !w.IsWithinWindow(date, hour, minute) {
		return ErrOutsideAvailability
	}
	if IsBusy(busy, date, hour, minute) {
		return ErrBusy
	}
	return nil
}

// ValidateInstant is Validate for a single combined timestamp, the
// shape candidate instants arrive in from the transport layer.
func (w WeeklyAvailability) ValidateInstant(busy []BusyInterval, at time.Time) error {
	return w.Validate(busy, at, at.Hour(), at.Minute())
}
