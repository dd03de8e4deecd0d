package readstore

import (
	"context"

	"giveflow/internal/infra"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/pgconv"
	"giveflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ItemReadStore struct {
	db db.DBTX
}

func NewItemReadStore(dbtx db.DBTX) *ItemReadStore {
	return &ItemReadStore{db: dbtx}
}

const findItemSQL = `
SELECT id, owner_id, title, approved, reserved,
	availability_spec, pickup_latitude, pickup_longitude
FROM items
WHERE id = $1`

func (s *ItemReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.ItemSnapshot, error) {
	var (
		pid, powner pgtype.UUID
		snap        shared.ItemSnapshot
	)
	err := s.db.QueryRow(ctx, findItemSQL, pgconv.UUIDToPgtype(id)).Scan(
		&pid, &powner, &snap.Title, &snap.Approved, &snap.Reserved,
		&snap.AvailabilitySpec, &snap.PickupLatitude, &snap.PickupLongitude,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "item not found")
		}
		return nil, infra.WrapRepoErr("failed to find item", err)
	}
	snap.ID = uuid.UUID(pid.Bytes)
	snap.OwnerID = uuid.UUID(powner.Bytes)
	return &snap, nil
}

const availabilitySpecSQL = `SELECT availability_spec FROM items WHERE id = $1`

func (s *ItemReadStore) AvailabilitySpec(ctx context.Context, itemID uuid.UUID) (string, error) {
	var spec string
	err := s.db.QueryRow(ctx, availabilitySpecSQL, pgconv.UUIDToPgtype(itemID)).Scan(&spec)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return "", infra.NewRepoErr(infra.KindNotFound, "item not found")
		}
		return "", infra.WrapRepoErr("failed to load availability spec", err)
	}
	return spec, nil
}
