package readstore

import (
	"context"

	"giveflow/internal/domain/availability"
	"giveflow/internal/domain/handoff"
	"giveflow/internal/infra"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/config"
	"giveflow/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// BusyReadStore derives busy intervals from the item's live handoffs:
// each in-progress transaction blocks its appointment instant plus the
// configured slot duration on that calendar day.
type BusyReadStore struct {
	db              db.DBTX
	slotDurationMin int
}

func NewBusyReadStore(dbtx db.DBTX, cfg config.HandoffConfig) *BusyReadStore {
	return &BusyReadStore{db: dbtx, slotDurationMin: cfg.SlotDurationMin}
}

const busyIntervalsSQL = `
SELECT appointment_at
FROM transactions
WHERE item_id = $1 AND status = $2`

func (s *BusyReadStore) BusyIntervalsByItem(ctx context.Context, itemID uuid.UUID) ([]availability.BusyInterval, error) {
	rows, err := s.db.Query(ctx, busyIntervalsSQL,
		pgconv.UUIDToPgtype(itemID),
		string(handoff.StatusInProgress),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load busy intervals", err)
	}
	defer rows.Close()

	var intervals []availability.BusyInterval
	for rows.Next() {
		var at pgtype.Timestamptz
		if err := rows.Scan(&at); err != nil {
			return nil, infra.WrapRepoErr("failed to scan appointment", err)
		}
		intervals = append(intervals, availability.NewBusyInterval(at.Time, s.slotDurationMin))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read busy intervals", err)
	}
	return intervals, nil
}
