//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"giveflow/internal/domain/availability"
	"giveflow/internal/domain/request"
	"giveflow/internal/pkg/clock"
	"giveflow/internal/usecase/commands"
	"giveflow/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// 2026-03-02 is a Monday.
	monday10 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	monday14 = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
)

type requestHarness struct {
	store    *fakeStore
	clock    *clock.MockClock
	commands commands.RequestCommands
}

func newRequestHarness() *requestHarness {
	store := newFakeStore()
	clk := clock.NewMockClock(fixedNow)
	return &requestHarness{
		store: store,
		clock: clk,
		commands: commands.NewRequestCommands(
			newFakeUoW(store),
			request.NewFactory(clk),
			&fakeCodeGenerator{code: "4821"},
			clk,
		),
	}
}

func (h *requestHarness) seedItem(ownerID uuid.UUID) shared.ItemSnapshot {
	item := shared.ItemSnapshot{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Title:            "winter coat",
		Approved:         true,
		AvailabilitySpec: "customPerDay 09:00_17:00 all",
		PickupLatitude:   35.6580,
		PickupLongitude:  139.7016,
	}
	h.store.putItem(item)
	return item
}

func (h *requestHarness) seedRequest(t *testing.T, item shared.ItemSnapshot, requesterID uuid.UUID, kind request.Kind, counter *request.CounterItemSpec) *request.Request {
	t.Helper()
	table, err := availability.Decode(item.AvailabilitySpec)
	require.NoError(t, err)

	req, err := request.NewFactory(h.clock).CreateRequest(
		request.ItemSpec{
			ID:           item.ID,
			OwnerID:      item.OwnerID,
			Approved:     item.Approved,
			Reserved:     item.Reserved,
			Availability: table,
		},
		requesterID, []time.Time{monday10, monday14}, nil, kind, counter,
	)
	require.NoError(t, err)
	h.store.putRequest(req)
	return req
}

func (h *requestHarness) jobTopics() []string {
	topics := make([]string, len(h.store.jobs))
	for i, job := range h.store.jobs {
		topics[i] = job.topic
	}
	return topics
}

func TestCreateRequestCommand(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requesterID := uuid.New()

	t.Run("gift request is persisted pending and the owner is notified", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)

		result, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:     item.ID,
			Candidates: []time.Time{monday10, monday14},
		})
		require.NoError(t, err)

		stored, ok := h.store.requests[result.RequestID]
		require.True(t, ok)
		assert.Equal(t, request.StatusPending, stored.Status)
		assert.Equal(t, requesterID, stored.RequesterID)
		assert.Equal(t, request.KindGift, stored.KindTag)

		assert.Equal(t, []string{"request_created"}, h.jobTopics())
	})

	t.Run("request against a reserved item is persisted held", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		item.Reserved = true
		h.store.putItem(item)

		result, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:     item.ID,
			Candidates: []time.Time{monday10},
		})
		require.NoError(t, err)

		stored, ok := h.store.requests[result.RequestID]
		require.True(t, ok)
		assert.Equal(t, request.StatusHoldOn, stored.Status)
	})

	t.Run("unknown item", func(t *testing.T) {
		h := newRequestHarness()
		_, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:     uuid.New(),
			Candidates: []time.Time{monday10},
		})
		require.ErrorIs(t, err, commands.ErrItemNotFound)
	})

	t.Run("unparseable availability on the item", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		item.AvailabilitySpec = "whenever"
		h.store.putItem(item)

		_, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:     item.ID,
			Candidates: []time.Time{monday10},
		})
		require.ErrorIs(t, err, availability.ErrMalformedAvailability)
	})

	t.Run("candidate outside the availability window", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)

		_, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:     item.ID,
			Candidates: []time.Time{time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)},
		})
		require.ErrorIs(t, err, availability.ErrOutsideAvailability)
	})

	t.Run("candidate colliding with a committed handoff", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		h.store.busy[item.ID] = []availability.BusyInterval{{
			Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			StartMinute: 10 * 60,
			EndMinute:   10*60 + 45,
		}}

		_, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:     item.ID,
			Candidates: []time.Time{monday10},
		})
		require.ErrorIs(t, err, availability.ErrBusy)
	})

	t.Run("owner requesting their own item", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)

		_, err := h.commands.Create(ctx, ownerID, commands.CreateRequestInput{
			ItemID:     item.ID,
			Candidates: []time.Time{monday10},
		})
		require.ErrorIs(t, err, request.ErrSelfRequestNotAllowed)
	})

	t.Run("exchange with an eligible counter item", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		counter := shared.ItemSnapshot{
			ID:       uuid.New(),
			OwnerID:  requesterID,
			Approved: true,
		}
		h.store.putItem(counter)

		result, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:        item.ID,
			Candidates:    []time.Time{monday10},
			CounterItemID: &counter.ID,
		})
		require.NoError(t, err)

		stored := h.store.requests[result.RequestID]
		assert.Equal(t, request.KindExchange, stored.KindTag)
		require.NotNil(t, stored.CounterItemID)
		assert.Equal(t, counter.ID, *stored.CounterItemID)
	})

	t.Run("counter item owned by a third party", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		counter := shared.ItemSnapshot{
			ID:       uuid.New(),
			OwnerID:  uuid.New(),
			Approved: true,
		}
		h.store.putItem(counter)

		_, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:        item.ID,
			Candidates:    []time.Time{monday10},
			CounterItemID: &counter.ID,
		})
		require.ErrorIs(t, err, request.ErrCounterItemNotEligible)
	})

	t.Run("unknown counter item", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		missing := uuid.New()

		_, err := h.commands.Create(ctx, requesterID, commands.CreateRequestInput{
			ItemID:        item.ID,
			Candidates:    []time.Time{monday10},
			CounterItemID: &missing,
		})
		require.ErrorIs(t, err, request.ErrCounterItemNotEligible)
	})
}

func TestApproveRequestCommand(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requesterID := uuid.New()

	t.Run("approval spawns the transaction and parks siblings", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)
		sibling := h.seedRequest(t, item, uuid.New(), request.Gift(), nil)

		result, err := h.commands.Approve(ctx, ownerID, req.ID(), commands.ApproveRequestInput{
			ChosenInstant: monday14,
			Message:       "see you at the north gate",
		})
		require.NoError(t, err)

		storedReq := h.store.requests[req.ID()]
		assert.Equal(t, request.StatusApproved, storedReq.Status)
		require.NotNil(t, storedReq.ChosenAt)
		assert.True(t, storedReq.ChosenAt.Equal(monday14))

		txn, ok := h.store.transactions[result.TransactionID]
		require.True(t, ok)
		assert.Equal(t, req.ID(), txn.RequestID)
		assert.Equal(t, ownerID, txn.CharitarianID)
		assert.Equal(t, requesterID, txn.RequesterID)
		assert.Equal(t, "4821", txn.Code)
		assert.True(t, txn.AppointmentAt.Equal(monday14))

		assert.True(t, h.store.items[item.ID].Reserved)
		assert.Equal(t, []uuid.UUID{sibling.ID()}, result.HeldRequests)
		assert.Equal(t, request.StatusHoldOn, h.store.requests[sibling.ID()].Status)

		assert.Contains(t, h.store.lockedItems, item.ID)
		assert.Equal(t, []string{"request_approved", "request_approved"}, h.jobTopics())
		for _, job := range h.store.jobs {
			var payload map[string]any
			require.NoError(t, json.Unmarshal(job.payload, &payload))
			assert.Equal(t, "see you at the north gate", payload["message"])
			assert.Equal(t, "Request approved", payload["title"])
		}
	})

	t.Run("only the item owner approves", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		_, err := h.commands.Approve(ctx, requesterID, req.ID(), commands.ApproveRequestInput{
			ChosenInstant: monday10,
		})
		require.ErrorIs(t, err, commands.ErrNotItemOwner)
	})

	t.Run("chosen instant must be a proposed candidate", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		_, err := h.commands.Approve(ctx, ownerID, req.ID(), commands.ApproveRequestInput{
			ChosenInstant: monday10.Add(5 * time.Minute),
		})
		require.ErrorIs(t, err, request.ErrNotACandidate)
	})

	t.Run("campaign approval without a volunteer", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.CampaignDonation(uuid.New()), nil)

		_, err := h.commands.Approve(ctx, ownerID, req.ID(), commands.ApproveRequestInput{
			ChosenInstant: monday10,
		})
		require.ErrorIs(t, err, request.ErrVolunteerRequired)
	})

	t.Run("campaign approval routes the volunteer into the transaction", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.CampaignDonation(uuid.New()), nil)
		volunteerID := uuid.New()

		result, err := h.commands.Approve(ctx, ownerID, req.ID(), commands.ApproveRequestInput{
			ChosenInstant: monday10,
			VolunteerID:   &volunteerID,
		})
		require.NoError(t, err)

		txn := h.store.transactions[result.TransactionID]
		require.NotNil(t, txn.VolunteerID)
		assert.Equal(t, volunteerID, *txn.VolunteerID)
	})

	t.Run("unknown request", func(t *testing.T) {
		h := newRequestHarness()
		_, err := h.commands.Approve(ctx, ownerID, uuid.New(), commands.ApproveRequestInput{
			ChosenInstant: monday10,
		})
		require.ErrorIs(t, err, commands.ErrRequestNotFound)
	})
}

func TestRejectRequestCommand(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requesterID := uuid.New()

	t.Run("owner rejects with a reason", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		require.NoError(t, h.commands.Reject(ctx, ownerID, req.ID(), "already given away"))

		stored := h.store.requests[req.ID()]
		assert.Equal(t, request.StatusRejected, stored.Status)
		assert.Equal(t, "already given away", stored.RejectReason)
		assert.Equal(t, []string{"request_rejected", "request_rejected"}, h.jobTopics())
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		err := h.commands.Reject(ctx, ownerID, req.ID(), "   ")
		require.ErrorIs(t, err, request.ErrEmptyRejectReason)
	})

	t.Run("requester cannot reject", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		err := h.commands.Reject(ctx, requesterID, req.ID(), "nope")
		require.ErrorIs(t, err, commands.ErrNotItemOwner)
	})
}

func TestCancelRequestCommand(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	requesterID := uuid.New()

	t.Run("requester withdraws an open request", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		require.NoError(t, h.commands.Cancel(ctx, requesterID, req.ID()))
		assert.Equal(t, request.StatusCanceled, h.store.requests[req.ID()].Status)
	})

	t.Run("owner cannot cancel on the requester's behalf", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		err := h.commands.Cancel(ctx, ownerID, req.ID())
		require.ErrorIs(t, err, commands.ErrNotRequester)
	})

	t.Run("terminal request cannot be withdrawn again", func(t *testing.T) {
		h := newRequestHarness()
		item := h.seedItem(ownerID)
		req := h.seedRequest(t, item, requesterID, request.Gift(), nil)

		require.NoError(t, h.commands.Cancel(ctx, requesterID, req.ID()))
		err := h.commands.Cancel(ctx, requesterID, req.ID())
		require.ErrorIs(t, err, request.ErrStaleRequestState)
	})
}
