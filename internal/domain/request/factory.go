package request

import (
	"time"

	"giveflow/internal/domain/availability"
	"giveflow/internal/pkg/clock"

	"github.com/google/uuid"
)

// ItemSpec is the slice of an offered item the factory needs to vet a
// new request.
type ItemSpec struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Approved     bool
	Reserved     bool
	Availability availability.WeeklyAvailability
}

// CounterItemSpec describes the item a requester puts up in exchange.
type CounterItemSpec struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	Approved bool
	Reserved bool
}

type Factory struct {
	Clock clock.Clock
}

func NewFactory(clk clock.Clock) *Factory {
	return &Factory{Clock: clk}
}

// CreateRequest vets and builds a new request. Every candidate
// instant must independently clear the item's availability window and
// the already-committed busy set. A request against a currently
// reserved item starts held, not pending, so the governing handoff's
// terminal fan-in can revive it.
func (f *Factory) CreateRequest(
	item ItemSpec,
	requesterID uuid.UUID,
	candidates []time.Time,
	busy []availability.BusyInterval,
	kind Kind,
	counter *CounterItemSpec,
) (*Request, error) {
	if !item.Approved {
		return nil, ErrItemNotRequestable
	}
	if item.OwnerID == requesterID {
		return nil, ErrSelfRequestNotAllowed
	}

	deduped := dedupeInstants(candidates)
	if len(deduped) == 0 {
		return nil, ErrNoCandidateInstant
	}
	for _, c := range deduped {
		if err := item.Availability.ValidateInstant(busy, c); err != nil {
			return nil, err
		}
	}

	if _, isExchange := kind.CounterItemID(); isExchange {
		if counter == nil || counter.OwnerID != requesterID || !counter.Approved || counter.Reserved {
			return nil, ErrCounterItemNotEligible
		}
	}

	status := StatusPending
	if item.Reserved {
		status = StatusHoldOn
	}

	now := f.Clock.Now()
	return &Request{
		id:          uuid.New(),
		itemID:      item.ID,
		requesterID: requesterID,
		ownerID:     item.OwnerID,
		kind:        kind,
		candidates:  deduped,
		status:      status,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func dedupeInstants(in []time.Time) []time.Time {
	out := make([]time.Time, 0, len(in))
	for _, c := range in {
		seen := false
		for _, kept := range out {
			if kept.Equal(c) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, c)
		}
	}
	return out
}
