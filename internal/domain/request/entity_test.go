//go:build unit

package request_test

import (
	"testing"
	"time"

	"giveflow/internal/domain/availability"
	"giveflow/internal/domain/request"
	"giveflow/internal/pkg/clock"

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

func openWeekdays(t *testing.T) availability.WeeklyAvailability {
	t.Helper()
	table, err := availability.Decode("customPerDay 09:00_17:00 all")
	require.NoError(t, err)
	return table
}

func approvedItem(t *testing.T, ownerID uuid.UUID) request.ItemSpec {
	t.Helper()
	return request.ItemSpec{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Approved:     true,
		Availability: openWeekdays(t),
	}
}

func newFactory() *request.Factory {
	return request.NewFactory(clock.NewMockClock(fixedNow))
}

func TestCreateRequest(t *testing.T) {
	ownerID := uuid.New()
	requesterID := uuid.New()

	t.Run("valid gift request starts pending", func(t *testing.T) {
		item := approvedItem(t, ownerID)
		req, err := newFactory().CreateRequest(
			item, requesterID, []time.Time{monday10, monday14}, nil, request.Gift(), nil,
		)
		require.NoError(t, err)

		assert.Equal(t, request.StatusPending, req.Status())
		assert.Equal(t, item.ID, req.ItemID())
		assert.Equal(t, ownerID, req.OwnerID())
		assert.Equal(t, requesterID, req.RequesterID())
		assert.Len(t, req.CandidateInstants(), 2)
		assert.Equal(t, fixedNow, req.CreatedAt())
		assert.Nil(t, req.ChosenAt())
	})

	t.Run("duplicate candidates collapse to one", func(t *testing.T) {
		req, err := newFactory().CreateRequest(
			approvedItem(t, ownerID), requesterID,
			[]time.Time{monday10, monday10, monday14}, nil, request.Gift(), nil,
		)
		require.NoError(t, err)
		assert.Len(t, req.CandidateInstants(), 2)
	})

	t.Run("owner cannot request their own item", func(t *testing.T) {
		_, err := newFactory().CreateRequest(
			approvedItem(t, ownerID), ownerID, []time.Time{monday10}, nil, request.Gift(), nil,
		)
		require.ErrorIs(t, err, request.ErrSelfRequestNotAllowed)
	})

	t.Run("reserved item parks the request as held", func(t *testing.T) {
		item := approvedItem(t, ownerID)
		item.Reserved = true
		req, err := newFactory().CreateRequest(
			item, requesterID, []time.Time{monday10}, nil, request.Gift(), nil,
		)
		require.NoError(t, err)
		assert.Equal(t, request.StatusHoldOn, req.Status())
	})

	t.Run("unapproved item is not requestable", func(t *testing.T) {
		item := approvedItem(t, ownerID)
		item.Approved = false
		_, err := newFactory().CreateRequest(
			item, requesterID, []time.Time{monday10}, nil, request.Gift(), nil,
		)
		require.ErrorIs(t, err, request.ErrItemNotRequestable)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := newFactory().CreateRequest(
			approvedItem(t, ownerID), requesterID, nil, nil, request.Gift(), nil,
		)
		require.ErrorIs(t, err, request.ErrNoCandidateInstant)
	})

	t.Run("every candidate must clear the availability window", func(t *testing.T) {
		lateEvening := time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)
		_, err := newFactory().CreateRequest(
			approvedItem(t, ownerID), requesterID,
			[]time.Time{monday10, lateEvening}, nil, request.Gift(), nil,
		)
		require.ErrorIs(t, err, availability.ErrOutsideAvailability)
	})

	t.Run("busy candidate is rejected", func(t *testing.T) {
		busy := []availability.BusyInterval{{
			Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			StartMinute: 10 * 60,
			EndMinute:   10*60 + 45,
		}}
		_, err := newFactory().CreateRequest(
			approvedItem(t, ownerID), requesterID,
			[]time.Time{monday10}, busy, request.Gift(), nil,
		)
		require.ErrorIs(t, err, availability.ErrBusy)
	})

	t.Run("exchange counter item eligibility", func(t *testing.T) {
		counterID := uuid.New()
		eligible := request.CounterItemSpec{
			ID:       counterID,
			OwnerID:  requesterID,
			Approved: true,
		}

		cases := []struct {
			name    string
			counter *request.CounterItemSpec
			mutate  func(*request.CounterItemSpec)
			errIs   error
		}{
			{"eligible counter item", &eligible, nil, nil},
			{"missing counter item", nil, nil, request.ErrCounterItemNotEligible},
			{"counter item owned by someone else", &eligible, func(c *request.CounterItemSpec) { c.OwnerID = uuid.New() }, request.ErrCounterItemNotEligible},
			{"unapproved counter item", &eligible, func(c *request.CounterItemSpec) { c.Approved = false }, request.ErrCounterItemNotEligible},
			{"reserved counter item", &eligible, func(c *request.CounterItemSpec) { c.Reserved = true }, request.ErrCounterItemNotEligible},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				counter := c.counter
				if counter != nil {
					clone := *counter
					if c.mutate != nil {
						c.mutate(&clone)
					}
					counter = &clone
				}
				_, err := newFactory().CreateRequest(
					approvedItem(t, ownerID), requesterID,
					[]time.Time{monday10}, nil, request.Exchange(counterID), counter,
				)
				if c.errIs == nil {
					require.NoError(t, err)
				} else {
					require.ErrorIs(t, err, c.errIs)
				}
			})
		}
	})
}

func pendingGift(t *testing.T) *request.Request {
	t.Helper()
	req, err := newFactory().CreateRequest(
		approvedItem(t, uuid.New()), uuid.New(),
		[]time.Time{monday10, monday14}, nil, request.Gift(), nil,
	)
	require.NoError(t, err)
	return req
}

func pendingCampaign(t *testing.T) *request.Request {
	t.Helper()
	req, err := newFactory().CreateRequest(
		approvedItem(t, uuid.New()), uuid.New(),
		[]time.Time{monday10}, nil, request.CampaignDonation(uuid.New()), nil,
	)
	require.NoError(t, err)
	return req
}

func TestRequestApprove(t *testing.T) {
	now := fixedNow.Add(time.Hour)

	t.Run("approving a candidate pins the chosen instant", func(t *testing.T) {
		req := pendingGift(t)
		require.NoError(t, req.Approve(monday14, nil, now))

		assert.Equal(t, request.StatusApproved, req.Status())
		require.NotNil(t, req.ChosenAt())
		assert.True(t, req.ChosenAt().Equal(monday14))
		assert.Equal(t, now, req.UpdatedAt())
	})

	t.Run("approving an instant that was never proposed", func(t *testing.T) {
		req := pendingGift(t)
		err := req.Approve(monday10.Add(time.Minute), nil, now)
		require.ErrorIs(t, err, request.ErrNotACandidate)
		assert.Equal(t, request.StatusPending, req.Status())
	})

	t.Run("campaign approval requires a volunteer", func(t *testing.T) {
		req := pendingCampaign(t)
		require.ErrorIs(t, req.Approve(monday10, nil, now), request.ErrVolunteerRequired)

		volunteerID := uuid.New()
		require.NoError(t, req.Approve(monday10, &volunteerID, now))
		require.NotNil(t, req.VolunteerID())
		assert.Equal(t, volunteerID, *req.VolunteerID())
	})

	t.Run("volunteer on a gift request is rejected", func(t *testing.T) {
		req := pendingGift(t)
		volunteerID := uuid.New()
		require.ErrorIs(t, req.Approve(monday10, &volunteerID, now), request.ErrVolunteerNotApplicable)
	})

	t.Run("held request can still be approved", func(t *testing.T) {
		req := pendingGift(t)
		require.NoError(t, req.Hold(now))
		require.NoError(t, req.Approve(monday10, nil, now))
	})

	t.Run("terminal request cannot be approved again", func(t *testing.T) {
		req := pendingGift(t)
		require.NoError(t, req.Approve(monday10, nil, now))
		require.ErrorIs(t, req.Approve(monday14, nil, now), request.ErrStaleRequestState)
	})
}

func TestRequestRejectAndCancel(t *testing.T) {
	now := fixedNow.Add(time.Hour)

	t.Run("reject records the trimmed reason", func(t *testing.T) {
		req := pendingGift(t)
		require.NoError(t, req.Reject("  already promised elsewhere  ", now))
		assert.Equal(t, request.StatusRejected, req.Status())
		assert.Equal(t, "already promised elsewhere", req.RejectReason())
	})

	t.Run("reject reason is mandatory", func(t *testing.T) {
		req := pendingGift(t)
		require.ErrorIs(t, req.Reject("   ", now), request.ErrEmptyRejectReason)
		assert.Equal(t, request.StatusPending, req.Status())
	})

	t.Run("cancel closes an open request", func(t *testing.T) {
		req := pendingGift(t)
		require.NoError(t, req.Cancel(now))
		assert.Equal(t, request.StatusCanceled, req.Status())
	})

	t.Run("terminal request cannot be rejected or canceled", func(t *testing.T) {
		req := pendingGift(t)
		require.NoError(t, req.Cancel(now))
		require.ErrorIs(t, req.Reject("too late", now), request.ErrStaleRequestState)
		require.ErrorIs(t, req.Cancel(now), request.ErrStaleRequestState)
	})
}

func TestRequestHold(t *testing.T) {
	now := fixedNow.Add(time.Hour)

	t.Run("hold and release round-trip", func(t *testing.T) {
		req := pendingGift(t)

		require.NoError(t, req.Hold(now))
		assert.Equal(t, request.StatusHoldOn, req.Status())

		require.NoError(t, req.ReleaseHold(now))
		assert.Equal(t, request.StatusPending, req.Status())
	})

	t.Run("hold only applies to pending requests", func(t *testing.T) {
		req := pendingGift(t)
		require.NoError(t, req.Hold(now))
		require.ErrorIs(t, req.Hold(now), request.ErrStaleRequestState)
	})

	t.Run("release only applies to held requests", func(t *testing.T) {
		req := pendingGift(t)
		require.ErrorIs(t, req.ReleaseHold(now), request.ErrStaleRequestState)
	})
}

func TestStatus(t *testing.T) {
	assert.True(t, request.StatusPending.IsOpen())
	assert.True(t, request.StatusHoldOn.IsOpen())
	assert.False(t, request.StatusApproved.IsOpen())

	assert.True(t, request.StatusApproved.IsTerminal())
	assert.True(t, request.StatusRejected.IsTerminal())
	assert.True(t, request.StatusCanceled.IsTerminal())
	assert.False(t, request.StatusHoldOn.IsTerminal())

	assert.False(t, request.Status("unknown").IsValid())
}
