//go:build unit

package commands_test

import (
	"context"
	"time"

	"giveflow/internal/domain/availability"
	"giveflow/internal/domain/handoff"
	"giveflow/internal/domain/request"
	"giveflow/internal/infra/db"
	"giveflow/internal/pkg/errs"
	"giveflow/internal/usecase/commands"
	"giveflow/internal/usecase/shared"

	"github.com/google/uuid"
)

var errFakeNotFound = errs.New("not found")

// fakeStore is an in-memory stand-in for the persistence layer. One
// instance backs the unit of work, the repositories and the command
// reads, so writes inside a transaction callback are immediately
// visible to subsequent reads.
type fakeStore struct {
	items        map[uuid.UUID]shared.ItemSnapshot
	requests     map[uuid.UUID]shared.RequestSnapshot
	transactions map[uuid.UUID]shared.TransactionSnapshot
	busy         map[uuid.UUID][]availability.BusyInterval

	jobs              []fakeJob
	lockedItems       []uuid.UUID
	transactionWrites int
}

type fakeJob struct {
	kind    string
	topic   string
	payload []byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:        map[uuid.UUID]shared.ItemSnapshot{},
		requests:     map[uuid.UUID]shared.RequestSnapshot{},
		transactions: map[uuid.UUID]shared.TransactionSnapshot{},
		busy:         map[uuid.UUID][]availability.BusyInterval{},
	}
}

func (s *fakeStore) putItem(item shared.ItemSnapshot) {
	s.items[item.ID] = item
}

func (s *fakeStore) putRequest(req *request.Request) {
	s.requests[req.ID()] = requestSnapshot(req)
}

func (s *fakeStore) putTransaction(txn *handoff.Transaction) {
	s.transactions[txn.ID()] = transactionSnapshot(txn)
}

func requestSnapshot(req *request.Request) shared.RequestSnapshot {
	snap := shared.RequestSnapshot{
		ID:           req.ID(),
		ItemID:       req.ItemID(),
		RequesterID:  req.RequesterID(),
		OwnerID:      req.OwnerID(),
		KindTag:      req.Kind().Tag(),
		Candidates:   req.CandidateInstants(),
		Status:       req.Status(),
		RejectReason: req.RejectReason(),
		ChosenAt:     req.ChosenAt(),
		VolunteerID:  req.VolunteerID(),
		CreatedAt:    req.CreatedAt(),
		UpdatedAt:    req.UpdatedAt(),
	}
	if id, ok := req.Kind().CounterItemID(); ok {
		snap.CounterItemID = &id
	}
	if id, ok := req.Kind().CampaignID(); ok {
		snap.CampaignID = &id
	}
	return snap
}

func transactionSnapshot(txn *handoff.Transaction) shared.TransactionSnapshot {
	return shared.TransactionSnapshot{
		ID:            txn.ID(),
		RequestID:     txn.RequestID(),
		ItemID:        txn.ItemID(),
		CharitarianID: txn.CharitarianID(),
		RequesterID:   txn.RequesterID(),
		VolunteerID:   txn.VolunteerID(),
		AppointmentAt: txn.AppointmentAt(),
		Status:        txn.Status(),
		Arrived:       txn.Arrived(),
		Verified:      txn.Verified(),
		Code:          txn.Code(),
		EvidenceURLs:  txn.EvidenceURLs(),
		RejectMessage: txn.RejectMessage(),
		CreatedAt:     txn.CreatedAt(),
		UpdatedAt:     txn.UpdatedAt(),
	}
}

// fakeUoW runs every callback inline, without transactional semantics.
type fakeUoW struct {
	store *fakeStore
}

func newFakeUoW(store *fakeStore) *fakeUoW {
	return &fakeUoW{store: store}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &fakeTx{store: u.store})
}

func (u *fakeUoW) WithinItem(ctx context.Context, itemID uuid.UUID, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.lockedItems = append(u.store.lockedItems, itemID)
	return u.Within(ctx, fn)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads {
	return &fakeReads{store: u.store}
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Requests() shared.RequestRepository           { return &fakeRequestRepo{store: t.store} }
func (t *fakeTx) Transactions() shared.TransactionRepository   { return &fakeTransactionRepo{store: t.store} }
func (t *fakeTx) Items() shared.ItemRepository                 { return &fakeItemRepo{store: t.store} }
func (t *fakeTx) Notifications() shared.NotificationRepository { return &fakeNotificationRepo{store: t.store} }
func (t *fakeTx) Reads() shared.CommandReads                   { return &fakeReads{store: t.store} }
func (t *fakeTx) DB() db.DBTX                                  { return nil }

type fakeReads struct {
	store *fakeStore
}

func (r *fakeReads) ItemByID(_ context.Context, id uuid.UUID) (*shared.ItemSnapshot, error) {
	item, ok := r.store.items[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return &item, nil
}

func (r *fakeReads) RequestByID(_ context.Context, id uuid.UUID) (*shared.RequestSnapshot, error) {
	snap, ok := r.store.requests[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return &snap, nil
}

func (r *fakeReads) TransactionByID(_ context.Context, id uuid.UUID) (*shared.TransactionSnapshot, error) {
	snap, ok := r.store.transactions[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return &snap, nil
}

func (r *fakeReads) BusyIntervalsByItem(_ context.Context, itemID uuid.UUID) ([]availability.BusyInterval, error) {
	return r.store.busy[itemID], nil
}

type fakeRequestRepo struct {
	store *fakeStore
}

func (r *fakeRequestRepo) Create(_ context.Context, _ db.DBTX, req *request.Request) (uuid.UUID, error) {
	r.store.putRequest(req)
	return req.ID(), nil
}

func (r *fakeRequestRepo) Update(_ context.Context, _ db.DBTX, req *request.Request, expected request.Status) error {
	stored, ok := r.store.requests[req.ID()]
	if !ok || stored.Status != expected {
		return errs.New("stale request state")
	}
	r.store.putRequest(req)
	return nil
}

func (r *fakeRequestRepo) HoldSiblings(_ context.Context, _ db.DBTX, itemID, excludeRequestID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	var held []uuid.UUID
	for id, snap := range r.store.requests {
		if snap.ItemID != itemID || id == excludeRequestID || snap.Status != request.StatusPending {
			continue
		}
		snap.Status = request.StatusHoldOn
		snap.UpdatedAt = now
		r.store.requests[id] = snap
		held = append(held, id)
	}
	return held, nil
}

func (r *fakeRequestRepo) ReleaseHeld(_ context.Context, _ db.DBTX, itemID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	var released []uuid.UUID
	for id, snap := range r.store.requests {
		if snap.ItemID != itemID || snap.Status != request.StatusHoldOn {
			continue
		}
		snap.Status = request.StatusPending
		snap.UpdatedAt = now
		r.store.requests[id] = snap
		released = append(released, id)
	}
	return released, nil
}

type fakeTransactionRepo struct {
	store *fakeStore
}

func (r *fakeTransactionRepo) Create(_ context.Context, _ db.DBTX, txn *handoff.Transaction) (uuid.UUID, error) {
	r.store.putTransaction(txn)
	return txn.ID(), nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, _ db.DBTX, txn *handoff.Transaction, expected handoff.Status) error {
	stored, ok := r.store.transactions[txn.ID()]
	if !ok || stored.Status != expected {
		return errs.New("stale transaction state")
	}
	r.store.putTransaction(txn)
	r.store.transactionWrites++
	return nil
}

type fakeItemRepo struct {
	store *fakeStore
}

func (r *fakeItemRepo) SetReserved(_ context.Context, _ db.DBTX, itemID uuid.UUID, reserved bool) error {
	item, ok := r.store.items[itemID]
	if !ok {
		return errFakeNotFound
	}
	item.Reserved = reserved
	r.store.items[itemID] = item
	return nil
}

type fakeNotificationRepo struct {
	store *fakeStore
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, _ time.Time) error {
	r.store.jobs = append(r.store.jobs, fakeJob{kind: kind, topic: topic, payload: payload})
	return nil
}

type fakeCodeGenerator struct {
	code string
}

func (g *fakeCodeGenerator) Generate() (string, error) {
	return g.code, nil
}

type fakeMediaStore struct {
	uploaded []commands.MediaAsset
	err      error
}

func (m *fakeMediaStore) Upload(_ context.Context, asset commands.MediaAsset) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploaded = append(m.uploaded, asset)
	return "/media/" + asset.Name, nil
}
