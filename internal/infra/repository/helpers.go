package repository

import (
	"giveflow/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var pu pgtype.UUID
		if err := rows.Scan(&pu); err != nil {
			return nil, infra.WrapRepoErr("failed to scan id", err)
		}
		ids = append(ids, uuid.UUID(pu.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read rows", err)
	}
	return ids, nil
}
