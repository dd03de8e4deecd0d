package repository

import (
	"context"

	"giveflow/internal/infra"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ItemRepository struct{}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

const setReservedSQL = `
UPDATE items SET reserved = $1, updated_at = now() WHERE id = $2`

func (r *ItemRepository) SetReserved(ctx context.Context, dbtx db.DBTX, itemID uuid.UUID, reserved bool) error {
	tag, err := dbtx.Exec(ctx, setReservedSQL, reserved, pgconv.UUIDToPgtype(itemID))
	if err != nil {
		return infra.WrapRepoErr("failed to set item reservation flag", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "item not found")
	}
	return nil
}
