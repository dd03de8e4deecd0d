package queries

import (
	"context"
	"time"

	"giveflow/internal/domain/request"
	"giveflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound   = errs.New("request not found")
	ErrRequestViewDenied = errs.New("request is visible only to its parties")
)

// RequestView is the read model handed to the transport layer.
type RequestView struct {
	ID            uuid.UUID
	ItemID        uuid.UUID
	ItemTitle     string
	RequesterID   uuid.UUID
	OwnerID       uuid.UUID
	Kind          request.KindTag
	CounterItemID *uuid.UUID
	CampaignID    *uuid.UUID
	Candidates    []time.Time
	Status        request.Status
	RejectReason  string
	ChosenAt      *time.Time
	VolunteerID   *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type RequestListFilter struct {
	Status *request.Status
}

type RequestReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RequestView, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, filter RequestListFilter) ([]RequestView, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, filter RequestListFilter) ([]RequestView, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter RequestListFilter) ([]RequestView, error)
}

type RequestQueries interface {
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*RequestView, error)
	ListForItem(ctx context.Context, actorID, itemID uuid.UUID, filter RequestListFilter) ([]RequestView, error)
	ListMine(ctx context.Context, actorID uuid.UUID, filter RequestListFilter) ([]RequestView, error)
	ListReceived(ctx context.Context, actorID uuid.UUID, filter RequestListFilter) ([]RequestView, error)
}

type requestQueriesImpl struct {
	store RequestReadStore
}

func NewRequestQueries(store RequestReadStore) RequestQueries {
	return &requestQueriesImpl{store: store}
}

func (q *requestQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*RequestView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, ErrRequestNotFound)
	}
	if view.RequesterID != actorID && view.OwnerID != actorID {
		return nil, ErrRequestViewDenied
	}
	return view, nil
}

// ListForItem is the owner's inbox for one offered item.
func (q *requestQueriesImpl) ListForItem(ctx context.Context, actorID, itemID uuid.UUID, filter RequestListFilter) ([]RequestView, error) {
	views, err := q.store.ListByItem(ctx, itemID, filter)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		if v.OwnerID != actorID {
			return nil, ErrRequestViewDenied
		}
	}
	return views, nil
}

func (q *requestQueriesImpl) ListMine(ctx context.Context, actorID uuid.UUID, filter RequestListFilter) ([]RequestView, error) {
	return q.store.ListByRequester(ctx, actorID, filter)
}

func (q *requestQueriesImpl) ListReceived(ctx context.Context, actorID uuid.UUID, filter RequestListFilter) ([]RequestView, error) {
	return q.store.ListByOwner(ctx, actorID, filter)
}
