package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"giveflow/internal/pkg/errs"
)

var (
	ErrMalformedAvailability = errs.New("malformed availability spec")
)

// Preset is the <kind> token of an encoded availability spec.
type Preset string

const (
	PresetAllDay       Preset = "allDay"
	PresetOfficeHours  Preset = "officeHours"
	PresetEvening      Preset = "evening"
	PresetCustomPerDay Preset = "customPerDay"
)

const (
	allDayStartMinute  = 9 * 60
	allDayEndMinute    = 21 * 60
	eveningStartMinute = 17 * 60
	eveningEndMinute   = 21 * 60

	minutesPerDay = 24 * 60
)

// TimeRange is an intra-day window in wall-clock minutes of day,
// inclusive start, exclusive end. Wraparound across midnight is not
// representable by the encoding.
type TimeRange struct {
	startMinute int
	endMinute   int
}

func NewTimeRange(startMinute, endMinute int) (TimeRange, error) {
	if startMinute < 0 || endMinute > minutesPerDay || startMinute >= endMinute {
		return TimeRange{}, errs.Mark(
			errs.New(fmt.Sprintf("invalid time range %d-%d", startMinute, endMinute)),
			ErrMalformedAvailability,
		)
	}
	return TimeRange{startMinute: startMinute, endMinute: endMinute}, nil
}

func (r TimeRange) StartMinute() int { return r.startMinute }
func (r TimeRange) EndMinute() int   { return r.endMinute }

// Contains reports whether a minute-of-day lies in [start, end).
func (r TimeRange) Contains(minuteOfDay int) bool {
	return minuteOfDay >= r.startMinute && minuteOfDay < r.endMinute
}

func (r TimeRange) encode() string {
	return fmt.Sprintf("%02d:%02d_%02d:%02d",
		r.startMinute/60, r.startMinute%60, r.endMinute/60, r.endMinute%60)
}

// WeeklyAvailability maps weekdays to at most one time range each.
// A weekday absent from the table is unavailable. Values are immutable
// once decoded; owners edit by re-encoding and re-decoding the spec.
type WeeklyAvailability struct {
	ranges map[time.Weekday]TimeRange
	preset Preset
}

func (w WeeklyAvailability) Preset() Preset { return w.preset }

// Range returns the window for a weekday, if any.
func (w WeeklyAvailability) Range(day time.Weekday) (TimeRange, bool) {
	r, ok := w.ranges[day]
	return r, ok
}

// Ranges returns a copy of the per-day table.
func (w WeeklyAvailability) Ranges() map[time.Weekday]TimeRange {
	out := make(map[time.Weekday]TimeRange, len(w.ranges))
	for d, r := range w.ranges {
		out[d] = r
	}
	return out
}

// Equal compares the per-day tables. The preset token is deliberately
// excluded: presets re-encode as customPerDay (lossy on the token, not
// on the table).
func (w WeeklyAvailability) Equal(other WeeklyAvailability) bool {
	if len(w.ranges) != len(other.ranges) {
		return false
	}
	for d, r := range w.ranges {
		o, ok := other.ranges[d]
		if !ok || o != r {
			return false
		}
	}
	return true
}

var dayTokens = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// weekOrder is Monday-first, matching the encoding's day model.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var dayNames = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// Decode parses an encoded weekly availability spec. It is pure: the
// same input always yields the same table or the same error.
func Decode(spec string) (WeeklyAvailability, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return WeeklyAvailability{}, errs.Mark(errs.New("empty availability spec"), ErrMalformedAvailability)
	}

	kind := Preset(fields[0])
	rest := fields[1:]

	switch kind {
	case PresetAllDay:
		return decodeFixedPreset(kind, rest, allDayStartMinute, allDayEndMinute)
	case PresetEvening:
		return decodeFixedPreset(kind, rest, eveningStartMinute, eveningEndMinute)
	case PresetOfficeHours:
		return decodeOfficeHours(rest)
	case PresetCustomPerDay:
		return decodeCustomPerDay(strings.Join(rest, " "))
	default:
		return WeeklyAvailability{}, errs.Mark(
			errs.New(fmt.Sprintf("unknown availability kind %q", fields[0])),
			ErrMalformedAvailability,
		)
	}
}

func decodeFixedPreset(kind Preset, rest []string, startMinute, endMinute int) (WeeklyAvailability, error) {
	if len(rest) != 0 {
		return WeeklyAvailability{}, errs.Mark(
			errs.New(fmt.Sprintf("%s takes no arguments", kind)),
			ErrMalformedAvailability,
		)
	}
	r, err := NewTimeRange(startMinute, endMinute)
	if err != nil {
		return WeeklyAvailability{}, err
	}
	ranges := make(map[time.Weekday]TimeRange, len(weekOrder))
	for _, d := range weekOrder {
		ranges[d] = r
	}
	return WeeklyAvailability{ranges: ranges, preset: kind}, nil
}

func decodeOfficeHours(rest []string) (WeeklyAvailability, error) {
	if len(rest) != 2 {
		return WeeklyAvailability{}, errs.Mark(
			errs.New("officeHours requires a range and a day list"),
			ErrMalformedAvailability,
		)
	}
	r, err := parseRange(rest[0])
	if err != nil {
		return WeeklyAvailability{}, err
	}

	ranges := make(map[time.Weekday]TimeRange)
	for _, tok := range strings.Split(rest[1], "_") {
		day, ok := dayTokens[tok]
		if !ok {
			return WeeklyAvailability{}, errs.Mark(
				errs.New(fmt.Sprintf("unknown day token %q", tok)),
				ErrMalformedAvailability,
			)
		}
		ranges[day] = r
	}
	return WeeklyAvailability{ranges: ranges, preset: PresetOfficeHours}, nil
}

func decodeCustomPerDay(rest string) (WeeklyAvailability, error) {
	if strings.TrimSpace(rest) == "" {
		return WeeklyAvailability{}, errs.Mark(
			errs.New("customPerDay requires at least one segment"),
			ErrMalformedAvailability,
		)
	}

	ranges := make(map[time.Weekday]TimeRange)
	segments := strings.Split(rest, "|")
	for _, seg := range segments {
		fields := strings.Fields(seg)
		if len(fields) != 2 {
			return WeeklyAvailability{}, errs.Mark(
				errs.New(fmt.Sprintf("malformed segment %q", strings.TrimSpace(seg))),
				ErrMalformedAvailability,
			)
		}

		r, err := parseRange(fields[0])
		if err != nil {
			return WeeklyAvailability{}, err
		}

		if fields[1] == "all" {
			// "all" is exclusive: it must be the only segment.
			if len(segments) != 1 {
				return WeeklyAvailability{}, errs.Mark(
					errs.New(`"all" cannot be combined with per-day segments`),
					ErrMalformedAvailability,
				)
			}
			for _, d := range weekOrder {
				ranges[d] = r
			}
			break
		}

		day, ok := dayTokens[fields[1]]
		if !ok {
			return WeeklyAvailability{}, errs.Mark(
				errs.New(fmt.Sprintf("unknown day token %q", fields[1])),
				ErrMalformedAvailability,
			)
		}
		ranges[day] = r
	}
	return WeeklyAvailability{ranges: ranges, preset: PresetCustomPerDay}, nil
}

func parseRange(token string) (TimeRange, error) {
	parts := strings.Split(token, "_")
	if len(parts) != 2 {
		return TimeRange{}, errs.Mark(
			errs.New(fmt.Sprintf("malformed range token %q", token)),
			ErrMalformedAvailability,
		)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return TimeRange{}, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(start, end)
}

func parseClock(token string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(token, "%02d:%02d", &h, &m); err != nil {
		return 0, errs.Mark(
			errs.New(fmt.Sprintf("malformed clock token %q", token)),
			ErrMalformedAvailability,
		)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, errs.Mark(
			errs.New(fmt.Sprintf("clock token %q out of range", token)),
			ErrMalformedAvailability,
		)
	}
	return h*60 + m, nil
}

// Encode serializes the table as a customPerDay spec. Preset tokens are
// not reconstructed: the persisted contract only guarantees that the
// table round-trips, not the original kind token.
func (w WeeklyAvailability) Encode() string {
	if len(w.ranges) == 0 {
		return ""
	}

	if uniform, r := w.uniformRange(); uniform {
		return fmt.Sprintf("%s %s all", PresetCustomPerDay, r.encode())
	}

	days := make([]time.Weekday, 0, len(w.ranges))
	for d := range w.ranges {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return weekIndex(days[i]) < weekIndex(days[j]) })

	segs := make([]string, 0, len(days))
	for _, d := range days {
		segs = append(segs, fmt.Sprintf("%s %s", w.ranges[d].encode(), dayNames[d]))
	}
	return string(PresetCustomPerDay) + " " + strings.Join(segs, " | ")
}

func (w WeeklyAvailability) uniformRange() (bool, TimeRange) {
	if len(w.ranges) != len(weekOrder) {
		return false, TimeRange{}
	}
	first := w.ranges[time.Monday]
	for _, r := range w.ranges {
		if r != first {
			return false, TimeRange{}
		}
	}
	return true, first
}

func weekIndex(d time.Weekday) int {
	for i, wd := range weekOrder {
		if wd == d {
			return i
		}
	}
	return len(weekOrder)
}
