package repository

import (
	"context"
	"time"

	"giveflow/internal/domain/request"
	"giveflow/internal/infra"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type RequestRepository struct{}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{}
}

const createRequestSQL = `
INSERT INTO requests (
	id, item_id, requester_id, owner_id,
	kind, counter_item_id, campaign_id,
	candidates, status, reject_reason, chosen_at, volunteer_id,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id`

func (r *RequestRepository) Create(ctx context.Context, dbtx db.DBTX, req *request.Request) (uuid.UUID, error) {
	kind := req.Kind()
	counterID, _ := kind.CounterItemID()
	campaignID, _ := kind.CampaignID()

	var counterPtr, campaignPtr *uuid.UUID
	if kind.Tag() == request.KindExchange {
		counterPtr = &counterID
	}
	if kind.Tag() == request.KindCampaignDonation {
		campaignPtr = &campaignID
	}

	var id uuid.UUID
	err := dbtx.QueryRow(ctx, createRequestSQL,
		pgconv.UUIDToPgtype(req.ID()),
		pgconv.UUIDToPgtype(req.ItemID()),
		pgconv.UUIDToPgtype(req.RequesterID()),
		pgconv.UUIDToPgtype(req.OwnerID()),
		string(kind.Tag()),
		pgconv.UUIDPtrToPgtype(counterPtr),
		pgconv.UUIDPtrToPgtype(campaignPtr),
		req.CandidateInstants(),
		string(req.Status()),
		req.RejectReason(),
		pgconv.TimePtrToPgtype(req.ChosenAt()),
		pgconv.UUIDPtrToPgtype(req.VolunteerID()),
		pgconv.TimeToPgtype(req.CreatedAt()),
		pgconv.TimeToPgtype(req.UpdatedAt()),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create request", err)
	}
	return id, nil
}

const updateRequestSQL = `
UPDATE requests
SET status = $1, reject_reason = $2, chosen_at = $3, volunteer_id = $4, updated_at = $5
WHERE id = $6 AND status = $7`

// Update is guarded by the status the caller observed; zero affected
// rows means a concurrent transition won the race.
func (r *RequestRepository) Update(ctx context.Context, dbtx db.DBTX, req *request.Request, expected request.Status) error {
	tag, err := dbtx.Exec(ctx, updateRequestSQL,
		string(req.Status()),
		req.RejectReason(),
		pgconv.TimePtrToPgtype(req.ChosenAt()),
		pgconv.UUIDPtrToPgtype(req.VolunteerID()),
		pgconv.TimeToPgtype(req.UpdatedAt()),
		pgconv.UUIDToPgtype(req.ID()),
		string(expected),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update request", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindStaleState, "request was modified concurrently")
	}
	return nil
}

const holdSiblingsSQL = `
UPDATE requests
SET status = $1, updated_at = $2
WHERE item_id = $3 AND id <> $4 AND status = $5
RETURNING id`

func (r *RequestRepository) HoldSiblings(ctx context.Context, dbtx db.DBTX, itemID, excludeRequestID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	rows, err := dbtx.Query(ctx, holdSiblingsSQL,
		string(request.StatusHoldOn),
		pgconv.TimeToPgtype(now),
		pgconv.UUIDToPgtype(itemID),
		pgconv.UUIDToPgtype(excludeRequestID),
		string(request.StatusPending),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to hold sibling requests", err)
	}
	return collectIDs(rows)
}

const releaseHeldSQL = `
UPDATE requests
SET status = $1, updated_at = $2
WHERE item_id = $3 AND status = $4
RETURNING id`

func (r *RequestRepository) ReleaseHeld(ctx context.Context, dbtx db.DBTX, itemID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	rows, err := dbtx.Query(ctx, releaseHeldSQL,
		string(request.StatusPending),
		pgconv.TimeToPgtype(now),
		pgconv.UUIDToPgtype(itemID),
		string(request.StatusHoldOn),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to release held requests", err)
	}
	return collectIDs(rows)
}
