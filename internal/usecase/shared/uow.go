package shared

import (
	"context"
	"time"

	"giveflow/internal/domain/availability"
	"giveflow/internal/domain/handoff"
	"giveflow/internal/domain/request"
	"giveflow/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinItem: Within plus an advisory lock scoped to the item id,
	// serializing hold fan-out/fan-in across that item's requests
	WithinItem(ctx context.Context, itemID uuid.UUID, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: validation reads outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Requests() RequestRepository
	Transactions() TransactionRepository
	Items() ItemRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	ItemByID(ctx context.Context, id uuid.UUID) (*ItemSnapshot, error)
	RequestByID(ctx context.Context, id uuid.UUID) (*RequestSnapshot, error)
	TransactionByID(ctx context.Context, id uuid.UUID) (*TransactionSnapshot, error)
	BusyIntervalsByItem(ctx context.Context, itemID uuid.UUID) ([]availability.BusyInterval, error)
}

// ItemSnapshot is the minimal slice of an offered item the command
// side needs: ownership, gating state, the encoded weekly availability
// and the handoff address.
type ItemSnapshot struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Title            string
	Approved         bool
	Reserved         bool
	AvailabilitySpec string
	PickupLatitude   float64
	PickupLongitude  float64
}

type RequestSnapshot struct {
	ID            uuid.UUID
	ItemID        uuid.UUID
	RequesterID   uuid.UUID
	OwnerID       uuid.UUID
	KindTag       request.KindTag
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

// ToDomain rehydrates the aggregate for a state transition.
func (s *RequestSnapshot) ToDomain() *request.Request {
	return request.ReconstructRequest(
		s.ID, s.ItemID, s.RequesterID, s.OwnerID,
		request.ReconstructKind(s.KindTag, s.CounterItemID, s.CampaignID),
		s.Candidates, s.Status, s.RejectReason, s.ChosenAt, s.VolunteerID,
		s.CreatedAt, s.UpdatedAt,
	)
}

type TransactionSnapshot struct {
	ID            uuid.UUID
	RequestID     uuid.UUID
	ItemID        uuid.UUID
	CharitarianID uuid.UUID
	RequesterID   uuid.UUID
	VolunteerID   *uuid.UUID
	AppointmentAt time.Time
	Status        handoff.Status
	Arrived       bool
	Verified      bool
	Code          string
	EvidenceURLs  []string
	RejectMessage string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s *TransactionSnapshot) ToDomain() *handoff.Transaction {
	return handoff.ReconstructTransaction(
		s.ID, s.RequestID, s.ItemID, s.CharitarianID, s.RequesterID,
		s.VolunteerID, s.AppointmentAt, s.Status, s.Arrived, s.Verified,
		s.Code, s.EvidenceURLs, s.RejectMessage, s.CreatedAt, s.UpdatedAt,
	)
}

type RequestRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, req *request.Request) (uuid.UUID, error)
	// Update persists a transition, guarded by the status the caller
	// read; zero rows affected means a concurrent transition won.
	Update(ctx context.Context, dbtx db.DBTX, req *request.Request, expected request.Status) error
	// HoldSiblings parks every other pending request for the item and
	// returns the affected ids.
	HoldSiblings(ctx context.Context, dbtx db.DBTX, itemID, excludeRequestID uuid.UUID, now time.Time) ([]uuid.UUID, error)
	// ReleaseHeld reverts the item's held requests to pending.
	ReleaseHeld(ctx context.Context, dbtx db.DBTX, itemID uuid.UUID, now time.Time) ([]uuid.UUID, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, txn *handoff.Transaction) (uuid.UUID, error)
	Update(ctx context.Context, dbtx db.DBTX, txn *handoff.Transaction, expected handoff.Status) error
}

type ItemRepository interface {
	SetReserved(ctx context.Context, dbtx db.DBTX, itemID uuid.UUID, reserved bool) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
