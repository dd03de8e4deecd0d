package commands

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"giveflow/internal/domain/geo"
	"giveflow/internal/domain/handoff"
	domrequest "giveflow/internal/domain/request"
	"giveflow/internal/pkg/clock"
	"giveflow/internal/pkg/errs"
	"giveflow/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errs.New("transaction not found")
)

type TransactionCommands interface {
	MarkArrived(ctx context.Context, actorID, transactionID uuid.UUID, position geo.Coordinates) error
	RevealCode(ctx context.Context, actorID, transactionID uuid.UUID) (string, error)
	SubmitCode(ctx context.Context, actorID, transactionID uuid.UUID, code string) error
	Confirm(ctx context.Context, actorID, transactionID uuid.UUID, evidence []MediaAsset) error
	ConfirmBatch(ctx context.Context, actorID uuid.UUID, transactionIDs []uuid.UUID, evidence []MediaAsset) (*BatchConfirmResult, error)
	Reject(ctx context.Context, actorID, transactionID uuid.UUID, message string, evidence []MediaAsset) error
	Cancel(ctx context.Context, actorID, transactionID uuid.UUID) error
}

// BatchConfirmResult reports the lenient-batch outcome: transactions
// that were not in-progress-and-verified are skipped, never failed.
type BatchConfirmResult struct {
	Confirmed []uuid.UUID
	Skipped   []uuid.UUID
}

type transactionCommandsImpl struct {
	uow   shared.UnitOfWork
	gate  geo.Gate
	media MediaStore
	clock clock.Clock
}

func NewTransactionCommands(uow shared.UnitOfWork, gate geo.Gate, media MediaStore, clk clock.Clock) TransactionCommands {
	return &transactionCommandsImpl{
		uow:   uow,
		gate:  gate,
		media: media,
		clock: clk,
	}
}

// newTransactionFromRequest binds the handoff to the single approved
// instant. Called only from the approval path, inside its transaction.
func newTransactionFromRequest(req *domrequest.Request, code string, now time.Time) *handoff.Transaction {
	chosen := req.ChosenAt()
	if chosen == nil {
		// Approve sets the chosen instant before this runs; a nil here
		// is a bug in the approval flow.
		panic("handoff created from a request without a chosen instant")
	}
	return handoff.NewTransaction(
		req.ID(), req.ItemID(), req.OwnerID(), req.RequesterID(),
		req.VolunteerID(), *chosen, code, now,
	)
}

func (uc *transactionCommandsImpl) MarkArrived(ctx context.Context, actorID, transactionID uuid.UUID, position geo.Coordinates) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().TransactionByID(ctx, transactionID)
		if derr != nil {
			return errs.Mark(derr, ErrTransactionNotFound)
		}
		item, derr := tx.Reads().ItemByID(ctx, snap.ItemID)
		if derr != nil {
			return errs.Mark(derr, ErrItemNotFound)
		}

		destination := geo.Coordinates{
			Latitude:  item.PickupLatitude,
			Longitude: item.PickupLongitude,
		}

		txn := snap.ToDomain()
		if derr = txn.MarkArrived(uc.gate, actorID, position, destination, uc.clock.Now()); derr != nil {
			return derr
		}
		if !snap.Arrived && txn.Arrived() {
			return tx.Transactions().Update(ctx, tx.DB(), txn, snap.Status)
		}
		return nil
	})
}

func (uc *transactionCommandsImpl) RevealCode(ctx context.Context, actorID, transactionID uuid.UUID) (string, error) {
	snap, err := uc.uow.CommandReads().TransactionByID(ctx, transactionID)
	if err != nil {
		return "", errs.Mark(err, ErrTransactionNotFound)
	}
	return snap.ToDomain().RevealCode(actorID)
}

func (uc *transactionCommandsImpl) SubmitCode(ctx context.Context, actorID, transactionID uuid.UUID, code string) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().TransactionByID(ctx, transactionID)
		if derr != nil {
			return errs.Mark(derr, ErrTransactionNotFound)
		}

		txn := snap.ToDomain()
		if derr = txn.SubmitCode(actorID, code, uc.clock.Now()); derr != nil {
			return derr
		}
		return tx.Transactions().Update(ctx, tx.DB(), txn, snap.Status)
	})
}

func (uc *transactionCommandsImpl) Confirm(ctx context.Context, actorID, transactionID uuid.UUID, evidence []MediaAsset) error {
	urls, err := uc.uploadEvidence(ctx, evidence)
	if err != nil {
		return err
	}

	snap, err := uc.uow.CommandReads().TransactionByID(ctx, transactionID)
	if err != nil {
		return errs.Mark(err, ErrTransactionNotFound)
	}

	return uc.settle(ctx, snap.ItemID, transactionID, func(txn *handoff.Transaction, now time.Time) error {
		return txn.Confirm(actorID, urls, now)
	}, "transaction_completed", "Handoff completed")
}

func (uc *transactionCommandsImpl) ConfirmBatch(ctx context.Context, actorID uuid.UUID, transactionIDs []uuid.UUID, evidence []MediaAsset) (*BatchConfirmResult, error) {
	urls, err := uc.uploadEvidence(ctx, evidence)
	if err != nil {
		return nil, err
	}

	result := &BatchConfirmResult{}
	for _, id := range transactionIDs {
		snap, err := uc.uow.CommandReads().TransactionByID(ctx, id)
		if err != nil {
			return nil, errs.Mark(err, ErrTransactionNotFound)
		}
		if !snap.ToDomain().ConfirmableInBatch() {
			result.Skipped = append(result.Skipped, id)
			continue
		}

		err = uc.settle(ctx, snap.ItemID, id, func(txn *handoff.Transaction, now time.Time) error {
			return txn.Confirm(actorID, urls, now)
		}, "transaction_completed", "Handoff completed")
		if err != nil {
			// The pre-filter raced a concurrent transition; the lenient
			// batch contract says skip, not fail.
			if errors.Is(err, handoff.ErrStaleTransactionState) || errors.Is(err, handoff.ErrNotYetVerified) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			return nil, err
		}
		result.Confirmed = append(result.Confirmed, id)
	}
	return result, nil
}

func (uc *transactionCommandsImpl) Reject(ctx context.Context, actorID, transactionID uuid.UUID, message string, evidence []MediaAsset) error {
	urls, err := uc.uploadEvidence(ctx, evidence)
	if err != nil {
		return err
	}

	snap, err := uc.uow.CommandReads().TransactionByID(ctx, transactionID)
	if err != nil {
		return errs.Mark(err, ErrTransactionNotFound)
	}

	return uc.settle(ctx, snap.ItemID, transactionID, func(txn *handoff.Transaction, now time.Time) error {
		return txn.Reject(actorID, message, urls, now)
	}, "transaction_not_completed", "Handoff not completed")
}

func (uc *transactionCommandsImpl) Cancel(ctx context.Context, actorID, transactionID uuid.UUID) error {
	snap, err := uc.uow.CommandReads().TransactionByID(ctx, transactionID)
	if err != nil {
		return errs.Mark(err, ErrTransactionNotFound)
	}

	return uc.settle(ctx, snap.ItemID, transactionID, func(txn *handoff.Transaction, now time.Time) error {
		return txn.Cancel(actorID, now)
	}, "transaction_canceled", "Handoff canceled")
}

// settle applies a terminal transition and fans the item's held
// requests back to pending, all under the item lock.
func (uc *transactionCommandsImpl) settle(
	ctx context.Context,
	itemID, transactionID uuid.UUID,
	transition func(txn *handoff.Transaction, now time.Time) error,
	topic, title string,
) error {
	return uc.uow.WithinItem(ctx, itemID, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().TransactionByID(ctx, transactionID)
		if derr != nil {
			return errs.Mark(derr, ErrTransactionNotFound)
		}

		now := uc.clock.Now()
		txn := snap.ToDomain()
		if derr = transition(txn, now); derr != nil {
			return derr
		}
		if derr = tx.Transactions().Update(ctx, tx.DB(), txn, snap.Status); derr != nil {
			return derr
		}

		if derr = tx.Items().SetReserved(ctx, tx.DB(), snap.ItemID, false); derr != nil {
			return derr
		}
		if _, derr = tx.Requests().ReleaseHeld(ctx, tx.DB(), snap.ItemID, now); derr != nil {
			return derr
		}

		if derr = uc.notifyTransaction(ctx, tx, txn.CharitarianID(), topic, title, txn.RejectMessage(), txn.ID()); derr != nil {
			return derr
		}
		return uc.notifyTransaction(ctx, tx, txn.RequesterID(), topic, title, txn.RejectMessage(), txn.ID())
	})
}

func (uc *transactionCommandsImpl) uploadEvidence(ctx context.Context, evidence []MediaAsset) ([]string, error) {
	urls := make([]string, 0, len(evidence))
	for _, asset := range evidence {
		url, err := uc.media.Upload(ctx, asset)
		if err != nil {
			return nil, errs.Wrap(err, "failed to upload evidence image")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (uc *transactionCommandsImpl) notifyTransaction(ctx context.Context, tx shared.Tx, recipientID uuid.UUID, topic, title, message string, transactionID uuid.UUID) error {
	payload, err := json.Marshal(map[string]any{
		"recipient_id": recipientID,
		"entity_kind":  "transaction",
		"entity_id":    transactionID,
		"type":         topic,
		"title":        title,
		"message":      message,
	})
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "push", topic, payload, uc.clock.Now())
}
