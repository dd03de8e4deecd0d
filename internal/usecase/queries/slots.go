package queries

import (
	"context"
	"time"

	"giveflow/internal/domain/availability"
	"giveflow/internal/pkg/clock"
	"giveflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrItemNotFound = errs.New("item not found")

// ItemAvailabilitySource supplies the encoded availability spec the
// slot picker decodes on the fly.
type ItemAvailabilitySource interface {
	AvailabilitySpec(ctx context.Context, itemID uuid.UUID) (string, error)
}

// BusyIntervalSource lists the per-day intervals already committed to
// handoffs for an item.
type BusyIntervalSource interface {
	BusyIntervalsByItem(ctx context.Context, itemID uuid.UUID) ([]availability.BusyInterval, error)
}

// SlotOptions is one date's picker state: which hours are offered and,
// per hour, which minutes survive the busy filter.
type SlotOptions struct {
	Date      time.Time
	Hours     []HourOption
	ValidDays []time.Weekday
}

type HourOption struct {
	Hour    int
	Minutes []int
	Busy    bool
}

type SlotQueries interface {
	// Options enumerates the two-step picker choices for a date.
	Options(ctx context.Context, itemID uuid.UUID, date time.Time) (*SlotOptions, error)
	// NextDate finds the earliest selectable date from today onward.
	NextDate(ctx context.Context, itemID uuid.UUID) (time.Time, error)
}

type slotQueriesImpl struct {
	items ItemAvailabilitySource
	busy  BusyIntervalSource
	clock clock.Clock
}

func NewSlotQueries(items ItemAvailabilitySource, busy BusyIntervalSource, clk clock.Clock) SlotQueries {
	return &slotQueriesImpl{items: items, busy: busy, clock: clk}
}

func (q *slotQueriesImpl) Options(ctx context.Context, itemID uuid.UUID, date time.Time) (*SlotOptions, error) {
	table, err := q.decode(ctx, itemID)
	if err != nil {
		return nil, err
	}
	intervals, err := q.busy.BusyIntervalsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	choices := table.HourChoices(date)
	hours := make([]HourOption, 0, len(choices))
	for _, c := range choices {
		opt := HourOption{Hour: c.Hour}
		for m := c.MinuteStart; m <= c.MinuteEnd; m++ {
			if !availability.IsBusy(intervals, date, c.Hour, m) {
				opt.Minutes = append(opt.Minutes, m)
			}
		}
		opt.Busy = len(opt.Minutes) == 0
		hours = append(hours, opt)
	}

	return &SlotOptions{
		Date:      date,
		Hours:     hours,
		ValidDays: table.ValidDaysOfWeek(),
	}, nil
}

func (q *slotQueriesImpl) NextDate(ctx context.Context, itemID uuid.UUID) (time.Time, error) {
	table, err := q.decode(ctx, itemID)
	if err != nil {
		return time.Time{}, err
	}
	return table.NextValidDate(q.clock.Now())
}

func (q *slotQueriesImpl) decode(ctx context.Context, itemID uuid.UUID) (availability.WeeklyAvailability, error) {
	spec, err := q.items.AvailabilitySpec(ctx, itemID)
	if err != nil {
		return availability.WeeklyAvailability{}, errs.Mark(err, ErrItemNotFound)
	}
	return availability.Decode(spec)
}
