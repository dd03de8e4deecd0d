package readstore

import (
	"context"

	"giveflow/internal/domain/handoff"
	"giveflow/internal/infra"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/pgconv"
	"giveflow/internal/usecase/queries"
	"giveflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TransactionReadStore struct {
	db db.DBTX
}

func NewTransactionReadStore(dbtx db.DBTX) *TransactionReadStore {
	return &TransactionReadStore{db: dbtx}
}

const transactionSnapshotSQL = `
SELECT id, request_id, item_id, charitarian_id, requester_id, volunteer_id,
	appointment_at, status, arrived, verified, code,
	evidence_urls, reject_message, created_at, updated_at
FROM transactions
WHERE id = $1`

func (s *TransactionReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.TransactionSnapshot, error) {
	var (
		pid, preq, pitem, pchar, prequester pgtype.UUID
		pvol                                pgtype.UUID
		pappt, pcreated, pupdated           pgtype.Timestamptz
		status                              string
		snap                                shared.TransactionSnapshot
	)
	err := s.db.QueryRow(ctx, transactionSnapshotSQL, pgconv.UUIDToPgtype(id)).Scan(
		&pid, &preq, &pitem, &pchar, &prequester, &pvol,
		&pappt, &status, &snap.Arrived, &snap.Verified, &snap.Code,
		&snap.EvidenceURLs, &snap.RejectMessage, &pcreated, &pupdated,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "transaction not found")
		}
		return nil, infra.WrapRepoErr("failed to find transaction", err)
	}

	snap.ID = uuid.UUID(pid.Bytes)
	snap.RequestID = uuid.UUID(preq.Bytes)
	snap.ItemID = uuid.UUID(pitem.Bytes)
	snap.CharitarianID = uuid.UUID(pchar.Bytes)
	snap.RequesterID = uuid.UUID(prequester.Bytes)
	snap.VolunteerID = pgconv.UUIDPtrFromPgtype(pvol)
	snap.AppointmentAt = pgconv.TimeFromPgtype(pappt)
	snap.Status = handoff.Status(status)
	snap.CreatedAt = pgconv.TimeFromPgtype(pcreated)
	snap.UpdatedAt = pgconv.TimeFromPgtype(pupdated)
	return &snap, nil
}

const transactionViewBaseSQL = `
SELECT t.id, t.request_id, t.item_id, i.title,
	t.charitarian_id, t.requester_id, t.volunteer_id,
	t.appointment_at, t.status, t.arrived, t.verified,
	t.evidence_urls, t.reject_message, t.created_at, t.updated_at
FROM transactions t
JOIN items i ON i.id = t.item_id`

func (s *TransactionReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.TransactionView, error) {
	row := s.db.QueryRow(ctx, transactionViewBaseSQL+` WHERE t.id = $1`, pgconv.UUIDToPgtype(id))
	view, err := scanTransactionView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "transaction not found")
		}
		return nil, infra.WrapRepoErr("failed to find transaction", err)
	}
	return view, nil
}

func (s *TransactionReadStore) ListByParticipant(ctx context.Context, userID uuid.UUID, filter queries.TransactionListFilter) ([]queries.TransactionView, error) {
	sql := transactionViewBaseSQL + `
WHERE (t.charitarian_id = $1 OR t.requester_id = $1 OR t.volunteer_id = $1)`
	args := []any{pgconv.UUIDToPgtype(userID)}
	if filter.Status != nil {
		sql += ` AND t.status = $2`
		args = append(args, string(*filter.Status))
	}
	sql += ` ORDER BY t.appointment_at DESC`

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list transactions", err)
	}
	defer rows.Close()

	var views []queries.TransactionView
	for rows.Next() {
		view, err := scanTransactionView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan transaction", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read transactions", err)
	}
	return views, nil
}

func scanTransactionView(row rowScanner) (*queries.TransactionView, error) {
	var (
		pid, preq, pitem, pchar, prequester pgtype.UUID
		pvol                                pgtype.UUID
		pappt, pcreated, pupdated           pgtype.Timestamptz
		status                              string
		view                                queries.TransactionView
	)
	err := row.Scan(
		&pid, &preq, &pitem, &view.ItemTitle,
		&pchar, &prequester, &pvol,
		&pappt, &status, &view.Arrived, &view.Verified,
		&view.EvidenceURLs, &view.RejectMessage, &pcreated, &pupdated,
	)
	if err != nil {
		return nil, err
	}

	view.ID = uuid.UUID(pid.Bytes)
	view.RequestID = uuid.UUID(preq.Bytes)
	view.ItemID = uuid.UUID(pitem.Bytes)
	view.CharitarianID = uuid.UUID(pchar.Bytes)
	view.RequesterID = uuid.UUID(prequester.Bytes)
	view.VolunteerID = pgconv.UUIDPtrFromPgtype(pvol)
	view.AppointmentAt = pgconv.TimeFromPgtype(pappt)
	view.Status = handoff.Status(status)
	view.CreatedAt = pgconv.TimeFromPgtype(pcreated)
	view.UpdatedAt = pgconv.TimeFromPgtype(pupdated)
	return &view, nil
}
