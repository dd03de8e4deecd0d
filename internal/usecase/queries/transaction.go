package queries

import (
	"context"
	"time"

	"giveflow/internal/domain/handoff"
	"giveflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound   = errs.New("transaction not found")
	ErrTransactionViewDenied = errs.New("transaction is visible only to its participants")
)

// TransactionView never carries the verification code; revealing it is
// a command with its own gate.
type TransactionView struct {
	ID            uuid.UUID
	RequestID     uuid.UUID
	ItemID        uuid.UUID
	ItemTitle     string
	CharitarianID uuid.UUID
	RequesterID   uuid.UUID
	VolunteerID   *uuid.UUID
	AppointmentAt time.Time
	Status        handoff.Status
	Arrived       bool
	Verified      bool
	EvidenceURLs  []string
	RejectMessage string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (v *TransactionView) participant(actorID uuid.UUID) bool {
	if v.CharitarianID == actorID || v.RequesterID == actorID {
		return true
	}
	return v.VolunteerID != nil && *v.VolunteerID == actorID
}

type TransactionListFilter struct {
	Status *handoff.Status
}

type TransactionReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionView, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, filter TransactionListFilter) ([]TransactionView, error)
}

type TransactionQueries interface {
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*TransactionView, error)
	ListMine(ctx context.Context, actorID uuid.UUID, filter TransactionListFilter) ([]TransactionView, error)
}

type transactionQueriesImpl struct {
	store TransactionReadStore
}

func NewTransactionQueries(store TransactionReadStore) TransactionQueries {
	return &transactionQueriesImpl{store: store}
}

func (q *transactionQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*TransactionView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, ErrTransactionNotFound)
	}
	if !view.participant(actorID) {
		return nil, ErrTransactionViewDenied
	}
	return view, nil
}

func (q *transactionQueriesImpl) ListMine(ctx context.Context, actorID uuid.UUID, filter TransactionListFilter) ([]TransactionView, error) {
	return q.store.ListByParticipant(ctx, actorID, filter)
}
