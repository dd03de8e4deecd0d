package repository

import (
	"context"

	"giveflow/internal/domain/handoff"
	"giveflow/internal/infra"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type TransactionRepository struct{}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

const createTransactionSQL = `
INSERT INTO transactions (
	id, request_id, item_id, charitarian_id, requester_id, volunteer_id,
	appointment_at, status, arrived, verified, code,
	evidence_urls, reject_message, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id`

func (r *TransactionRepository) Create(ctx context.Context, dbtx db.DBTX, txn *handoff.Transaction) (uuid.UUID, error) {
	var id uuid.UUID
	err := dbtx.QueryRow(ctx, createTransactionSQL,
		pgconv.UUIDToPgtype(txn.ID()),
		pgconv.UUIDToPgtype(txn.RequestID()),
		pgconv.UUIDToPgtype(txn.ItemID()),
		pgconv.UUIDToPgtype(txn.CharitarianID()),
		pgconv.UUIDToPgtype(txn.RequesterID()),
		pgconv.UUIDPtrToPgtype(txn.VolunteerID()),
		pgconv.TimeToPgtype(txn.AppointmentAt()),
		string(txn.Status()),
		txn.Arrived(),
		txn.Verified(),
		txn.Code(),
		txn.EvidenceURLs(),
		txn.RejectMessage(),
		pgconv.TimeToPgtype(txn.CreatedAt()),
		pgconv.TimeToPgtype(txn.UpdatedAt()),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create transaction", err)
	}
	return id, nil
}

const updateTransactionSQL = `
UPDATE transactions
SET status = $1, arrived = $2, verified = $3,
	evidence_urls = $4, reject_message = $5, updated_at = $6
WHERE id = $7 AND status = $8`

func (r *TransactionRepository) Update(ctx context.Context, dbtx db.DBTX, txn *handoff.Transaction, expected handoff.Status) error {
	tag, err := dbtx.Exec(ctx, updateTransactionSQL,
		string(txn.Status()),
		txn.Arrived(),
		txn.Verified(),
		txn.EvidenceURLs(),
		txn.RejectMessage(),
		pgconv.TimeToPgtype(txn.UpdatedAt()),
		pgconv.UUIDToPgtype(txn.ID()),
		string(expected),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindStaleState, "transaction was modified concurrently")
	}
	return nil
}
