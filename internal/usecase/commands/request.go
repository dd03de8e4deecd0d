package commands

import (
	"context"
	"encoding/json"
	"time"

	"giveflow/internal/domain/availability"
	domrequest "giveflow/internal/domain/request"
	"giveflow/internal/pkg/clock"
	"giveflow/internal/pkg/errs"
	"giveflow/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound         = errs.New("item not found")
	ErrRequestNotFound      = errs.New("request not found")
	ErrNotItemOwner         = errs.New("only the item owner may do this")
	ErrNotRequester         = errs.New("only the requester may do this")
	ErrRequestAlreadyClosed = errs.New("request was already closed")
)

type CreateRequestInput struct {
	ItemID        uuid.UUID
	Candidates    []time.Time
	CounterItemID *uuid.UUID
	CampaignID    *uuid.UUID
}

type CreateRequestResult struct {
	RequestID uuid.UUID
}

type ApproveRequestInput struct {
	ChosenInstant time.Time
	Message       string
	VolunteerID   *uuid.UUID
}

type ApproveRequestResult struct {
	TransactionID uuid.UUID
	HeldRequests  []uuid.UUID
}

type RequestCommands interface {
	Create(ctx context.Context, actorID uuid.UUID, in CreateRequestInput) (*CreateRequestResult, error)
	Approve(ctx context.Context, actorID, requestID uuid.UUID, in ApproveRequestInput) (*ApproveRequestResult, error)
	Reject(ctx context.Context, actorID, requestID uuid.UUID, reason string) error
	Cancel(ctx context.Context, actorID, requestID uuid.UUID) error
}

type requestCommandsImpl struct {
	uow     shared.UnitOfWork
	factory *domrequest.Factory
	codes   CodeGenerator
	clock   clock.Clock
}

func NewRequestCommands(uow shared.UnitOfWork, factory *domrequest.Factory, codes CodeGenerator, clk clock.Clock) RequestCommands {
	return &requestCommandsImpl{
		uow:     uow,
		factory: factory,
		codes:   codes,
		clock:   clk,
	}
}

func (uc *requestCommandsImpl) Create(ctx context.Context, actorID uuid.UUID, in CreateRequestInput) (*CreateRequestResult, error) {
	reads := uc.uow.CommandReads()

	item, err := reads.ItemByID(ctx, in.ItemID)
	if err != nil {
		return nil, errs.Mark(err, ErrItemNotFound)
	}

	table, err := availability.Decode(item.AvailabilitySpec)
	if err != nil {
		return nil, err
	}

	busy, err := reads.BusyIntervalsByItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}

	kind, counter, err := uc.resolveKind(ctx, reads, actorID, in)
	if err != nil {
		return nil, err
	}

	req, err := uc.factory.CreateRequest(
		domrequest.ItemSpec{
			ID:           item.ID,
			OwnerID:      item.OwnerID,
			Approved:     item.Approved,
			Reserved:     item.Reserved,
			Availability: table,
		},
		actorID,
		in.Candidates,
		busy,
		kind,
		counter,
	)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, derr := tx.Requests().Create(ctx, tx.DB(), req); derr != nil {
			return derr
		}
		return uc.notify(ctx, tx, req.OwnerID(), "request_created", "New request received", "", req.ID())
	})
	if err != nil {
		return nil, err
	}
	return &CreateRequestResult{RequestID: req.ID()}, nil
}

func (uc *requestCommandsImpl) resolveKind(
	ctx context.Context,
	reads shared.CommandReads,
	actorID uuid.UUID,
	in CreateRequestInput,
) (domrequest.Kind, *domrequest.CounterItemSpec, error) {
	switch {
	case in.CounterItemID != nil:
		counterItem, err := reads.ItemByID(ctx, *in.CounterItemID)
		if err != nil {
			return domrequest.Kind{}, nil, errs.Mark(err, domrequest.ErrCounterItemNotEligible)
		}
		return domrequest.Exchange(*in.CounterItemID), &domrequest.CounterItemSpec{
			ID:       counterItem.ID,
			OwnerID:  counterItem.OwnerID,
			Approved: counterItem.Approved,
			Reserved: counterItem.Reserved,
		}, nil
	case in.CampaignID != nil:
		return domrequest.CampaignDonation(*in.CampaignID), nil, nil
	default:
		return domrequest.Gift(), nil, nil
	}
}

// Approve commits one candidate instant, spawns the handoff
// transaction and parks every sibling pending request, all inside one
// item-scoped transaction: an approval without a resulting transaction
// would be an invariant violation.
func (uc *requestCommandsImpl) Approve(ctx context.Context, actorID, requestID uuid.UUID, in ApproveRequestInput) (*ApproveRequestResult, error) {
	var result ApproveRequestResult

	snap, err := uc.uow.CommandReads().RequestByID(ctx, requestID)
	if err != nil {
		return nil, errs.Mark(err, ErrRequestNotFound)
	}
	if snap.OwnerID != actorID {
		return nil, ErrNotItemOwner
	}

	err = uc.uow.WithinItem(ctx, snap.ItemID, func(ctx context.Context, tx shared.Tx) error {
		// Re-read under the item lock; a concurrent approval may have
		// advanced this or a sibling request meanwhile.
		snap, derr := tx.Reads().RequestByID(ctx, requestID)
		if derr != nil {
			return errs.Mark(derr, ErrRequestNotFound)
		}

		now := uc.clock.Now()
		req := snap.ToDomain()
		if derr = req.Approve(in.ChosenInstant, in.VolunteerID, now); derr != nil {
			return derr
		}
		if derr = tx.Requests().Update(ctx, tx.DB(), req, snap.Status); derr != nil {
			return derr
		}

		code, derr := uc.codes.Generate()
		if derr != nil {
			return derr
		}
		txn := newTransactionFromRequest(req, code, now)
		if _, derr = tx.Transactions().Create(ctx, tx.DB(), txn); derr != nil {
			return derr
		}
		if derr = tx.Items().SetReserved(ctx, tx.DB(), req.ItemID(), true); derr != nil {
			return derr
		}

		held, derr := tx.Requests().HoldSiblings(ctx, tx.DB(), req.ItemID(), req.ID(), now)
		if derr != nil {
			return derr
		}

		result = ApproveRequestResult{TransactionID: txn.ID(), HeldRequests: held}

		if derr = uc.notify(ctx, tx, req.RequesterID(), "request_approved", "Request approved", in.Message, req.ID()); derr != nil {
			return derr
		}
		return uc.notify(ctx, tx, req.OwnerID(), "request_approved", "Request approved", in.Message, req.ID())
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (uc *requestCommandsImpl) Reject(ctx context.Context, actorID, requestID uuid.UUID, reason string) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().RequestByID(ctx, requestID)
		if derr != nil {
			return errs.Mark(derr, ErrRequestNotFound)
		}
		if snap.OwnerID != actorID {
			return ErrNotItemOwner
		}

		now := uc.clock.Now()
		req := snap.ToDomain()
		if derr = req.Reject(reason, now); derr != nil {
			return derr
		}
		if derr = tx.Requests().Update(ctx, tx.DB(), req, snap.Status); derr != nil {
			return derr
		}

		if derr = uc.notify(ctx, tx, req.RequesterID(), "request_rejected", "Request rejected", req.RejectReason(), req.ID()); derr != nil {
			return derr
		}
		return uc.notify(ctx, tx, req.OwnerID(), "request_rejected", "Request rejected", req.RejectReason(), req.ID())
	})
}

func (uc *requestCommandsImpl) Cancel(ctx context.Context, actorID, requestID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().RequestByID(ctx, requestID)
		if derr != nil {
			return errs.Mark(derr, ErrRequestNotFound)
		}
		if snap.RequesterID != actorID {
			return ErrNotRequester
		}

		now := uc.clock.Now()
		req := snap.ToDomain()
		if derr = req.Cancel(now); derr != nil {
			return derr
		}
		if derr = tx.Requests().Update(ctx, tx.DB(), req, snap.Status); derr != nil {
			return derr
		}

		if derr = uc.notify(ctx, tx, req.OwnerID(), "request_canceled", "Request canceled", "", req.ID()); derr != nil {
			return derr
		}
		return uc.notify(ctx, tx, req.RequesterID(), "request_canceled", "Request canceled", "", req.ID())
	})
}

// notify enqueues a delivery job in the same transaction; delivery
// itself is the notification service's problem.
func (uc *requestCommandsImpl) notify(ctx context.Context, tx shared.Tx, recipientID uuid.UUID, topic, title, message string, requestID uuid.UUID) error {
	payload, err := json.Marshal(map[string]any{
		"recipient_id": recipientID,
		"entity_kind":  "request",
		"entity_id":    requestID,
		"type":         topic,
		"title":        title,
		"message":      message,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "push", topic, payload, uc.clock.Now())
}
