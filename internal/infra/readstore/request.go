package readstore

import (
	"context"
	"time"

	"giveflow/internal/domain/request"
	"giveflow/internal/infra"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/pgconv"
	"giveflow/internal/usecase/queries"
	"giveflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RequestReadStore struct {
	db db.DBTX
}

func NewRequestReadStore(dbtx db.DBTX) *RequestReadStore {
	return &RequestReadStore{db: dbtx}
}

const requestSnapshotSQL = `
SELECT id, item_id, requester_id, owner_id,
	kind, counter_item_id, campaign_id,
	candidates, status, reject_reason, chosen_at, volunteer_id,
	created_at, updated_at
FROM requests
WHERE id = $1`

func (s *RequestReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.RequestSnapshot, error) {
	var (
		pid, pitem, prequester, powner pgtype.UUID
		pcounter, pcampaign, pvol      pgtype.UUID
		kind, status                   string
		pchosen                        pgtype.Timestamptz
		pcreated, pupdated             pgtype.Timestamptz
		candidates                     []time.Time
		rejectReason                   string
	)
	err := s.db.QueryRow(ctx, requestSnapshotSQL, pgconv.UUIDToPgtype(id)).Scan(
		&pid, &pitem, &prequester, &powner,
		&kind, &pcounter, &pcampaign,
		&candidates, &status, &rejectReason, &pchosen, &pvol,
		&pcreated, &pupdated,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "request not found")
		}
		return nil, infra.WrapRepoErr("failed to find request", err)
	}

	return &shared.RequestSnapshot{
		ID:            uuid.UUID(pid.Bytes),
		ItemID:        uuid.UUID(pitem.Bytes),
		RequesterID:   uuid.UUID(prequester.Bytes),
		OwnerID:       uuid.UUID(powner.Bytes),
		KindTag:       request.KindTag(kind),
		CounterItemID: pgconv.UUIDPtrFromPgtype(pcounter),
		CampaignID:    pgconv.UUIDPtrFromPgtype(pcampaign),
		Candidates:    candidates,
		Status:        request.Status(status),
		RejectReason:  rejectReason,
		ChosenAt:      pgconv.TimePtrFromPgtype(pchosen),
		VolunteerID:   pgconv.UUIDPtrFromPgtype(pvol),
		CreatedAt:     pgconv.TimeFromPgtype(pcreated),
		UpdatedAt:     pgconv.TimeFromPgtype(pupdated),
	}, nil
}

const requestViewBaseSQL = `
SELECT r.id, r.item_id, i.title, r.requester_id, r.owner_id,
	r.kind, r.counter_item_id, r.campaign_id,
	r.candidates, r.status, r.reject_reason, r.chosen_at, r.volunteer_id,
	r.created_at, r.updated_at
FROM requests r
JOIN items i ON i.id = r.item_id`

func (s *RequestReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.RequestView, error) {
	row := s.db.QueryRow(ctx, requestViewBaseSQL+` WHERE r.id = $1`, pgconv.UUIDToPgtype(id))
	view, err := scanRequestView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "request not found")
		}
		return nil, infra.WrapRepoErr("failed to find request", err)
	}
	return view, nil
}

func (s *RequestReadStore) ListByItem(ctx context.Context, itemID uuid.UUID, filter queries.RequestListFilter) ([]queries.RequestView, error) {
	return s.list(ctx, `r.item_id`, pgconv.UUIDToPgtype(itemID), filter)
}

func (s *RequestReadStore) ListByRequester(ctx context.Context, requesterID uuid.UUID, filter queries.RequestListFilter) ([]queries.RequestView, error) {
	return s.list(ctx, `r.requester_id`, pgconv.UUIDToPgtype(requesterID), filter)
}

func (s *RequestReadStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter queries.RequestListFilter) ([]queries.RequestView, error) {
	return s.list(ctx, `r.owner_id`, pgconv.UUIDToPgtype(ownerID), filter)
}

func (s *RequestReadStore) list(ctx context.Context, column string, key pgtype.UUID, filter queries.RequestListFilter) ([]queries.RequestView, error) {
	sql := requestViewBaseSQL + ` WHERE ` + column + ` = $1`
	args := []any{key}
	if filter.Status != nil {
		sql += ` AND r.status = $2`
		args = append(args, string(*filter.Status))
	}
	sql += ` ORDER BY r.created_at DESC`

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list requests", err)
	}
	defer rows.Close()

	var views []queries.RequestView
	for rows.Next() {
		view, err := scanRequestView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan request", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read requests", err)
	}
	return views, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequestView(row rowScanner) (*queries.RequestView, error) {
	var (
		pid, pitem, prequester, powner pgtype.UUID
		pcounter, pcampaign, pvol      pgtype.UUID
		kind, status                   string
		pchosen, pcreated, pupdated    pgtype.Timestamptz
		view                           queries.RequestView
	)
	err := row.Scan(
		&pid, &pitem, &view.ItemTitle, &prequester, &powner,
		&kind, &pcounter, &pcampaign,
		&view.Candidates, &status, &view.RejectReason, &pchosen, &pvol,
		&pcreated, &pupdated,
	)
	if err != nil {
		return nil, err
	}

	view.ID = uuid.UUID(pid.Bytes)
	view.ItemID = uuid.UUID(pitem.Bytes)
	view.RequesterID = uuid.UUID(prequester.Bytes)
	view.OwnerID = uuid.UUID(powner.Bytes)
	view.Kind = request.KindTag(kind)
	view.CounterItemID = pgconv.UUIDPtrFromPgtype(pcounter)
	view.CampaignID = pgconv.UUIDPtrFromPgtype(pcampaign)
	view.Status = request.Status(status)
	view.ChosenAt = pgconv.TimePtrFromPgtype(pchosen)
	view.VolunteerID = pgconv.UUIDPtrFromPgtype(pvol)
	view.CreatedAt = pgconv.TimeFromPgtype(pcreated)
	view.UpdatedAt = pgconv.TimeFromPgtype(pupdated)
	return &view, nil
}
