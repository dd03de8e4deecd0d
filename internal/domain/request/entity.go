package request

import (
	"strings"
	"time"

	"giveflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrSelfRequestNotAllowed   = errs.New("cannot request own item")
	ErrItemNotRequestable      = errs.New("item is not open for requests")
	ErrCounterItemNotEligible  = errs.New("counter item is not eligible for exchange")
	ErrNoCandidateInstant      = errs.New("at least one candidate instant is required")
	ErrStaleRequestState       = errs.New("request is not in an actionable state")
	ErrEmptyRejectReason       = errs.New("reject reason is required")
	ErrNotACandidate           = errs.New("chosen instant was never a candidate")
	ErrVolunteerRequired       = errs.New("campaign approval requires a volunteer")
	ErrVolunteerNotApplicable  = errs.New("volunteer only applies to campaign requests")
)

// Request is one party's bid for an offered item, carrying the
// candidate appointment instants the requester proposed. Requests are
// never deleted; terminal transitions only advance status.
type Request struct {
	id           uuid.UUID
	itemID       uuid.UUID
	requesterID  uuid.UUID
	ownerID      uuid.UUID
	kind         Kind
	candidates   []time.Time
	status       Status
	rejectReason string
	chosenAt     *time.Time
	volunteerID  *uuid.UUID
	createdAt    time.Time
	updatedAt    time.Time
}

func ReconstructRequest(
	id, itemID, requesterID, ownerID uuid.UUID,
	kind Kind,
	candidates []time.Time,
	status Status,
	rejectReason string,
	chosenAt *time.Time,
	volunteerID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Request {
	return &Request{
		id:           id,
		itemID:       itemID,
		requesterID:  requesterID,
		ownerID:      ownerID,
		kind:         kind,
		candidates:   candidates,
		status:       status,
		rejectReason: rejectReason,
		chosenAt:     chosenAt,
		volunteerID:  volunteerID,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (r *Request) ID() uuid.UUID           { return r.id }
func (r *Request) ItemID() uuid.UUID       { return r.itemID }
func (r *Request) RequesterID() uuid.UUID  { return r.requesterID }
func (r *Request) OwnerID() uuid.UUID      { return r.ownerID }
func (r *Request) Kind() Kind              { return r.kind }
func (r *Request) Status() Status          { return r.status }
func (r *Request) RejectReason() string    { return r.rejectReason }
func (r *Request) ChosenAt() *time.Time    { return r.chosenAt }
func (r *Request) VolunteerID() *uuid.UUID { return r.volunteerID }
func (r *Request) CreatedAt() time.Time    { return r.createdAt }
func (r *Request) UpdatedAt() time.Time    { return r.updatedAt }

// CandidateInstants returns the proposed instants in proposal order.
func (r *Request) CandidateInstants() []time.Time {
	out := make([]time.Time, len(r.candidates))
	copy(out, r.candidates)
	return out
}

func (r *Request) hasCandidate(at time.Time) bool {
	for _, c := range r.candidates {
		if c.Equal(at) {
			return true
		}
	}
	return false
}

// Approve commits the request to exactly one of its original
// candidates. An instant that was never proposed is a caller bug, not
// a user input problem, and surfaces as ErrNotACandidate.
func (r *Request) Approve(chosen time.Time, volunteerID *uuid.UUID, now time.Time) error {
	if !r.status.IsOpen() {
		return ErrStaleRequestState
	}
	if !r.hasCandidate(chosen) {
		return ErrNotACandidate
	}
	if _, isCampaign := r.kind.CampaignID(); isCampaign {
		if volunteerID == nil {
			return ErrVolunteerRequired
		}
	} else if volunteerID != nil {
		return ErrVolunteerNotApplicable
	}

	r.status = StatusApproved
	r.chosenAt = &chosen
	r.volunteerID = volunteerID
	r.updatedAt = now
	return nil
}

func (r *Request) Reject(reason string, now time.Time) error {
	if !r.status.IsOpen() {
		return ErrStaleRequestState
	}
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyRejectReason
	}
	r.status = StatusRejected
	r.rejectReason = strings.TrimSpace(reason)
	r.updatedAt = now
	return nil
}

func (r *Request) Cancel(now time.Time) error {
	if !r.status.IsOpen() {
		return ErrStaleRequestState
	}
	r.status = StatusCanceled
	r.updatedAt = now
	return nil
}

// Hold parks a still-pending request while a sibling's transaction has
// the item reserved.
func (r *Request) Hold(now time.Time) error {
	if r.status != StatusPending {
		return ErrStaleRequestState
	}
	r.status = StatusHoldOn
	r.updatedAt = now
	return nil
}

// ReleaseHold reverts Hold once the conflicting reservation clears.
func (r *Request) ReleaseHold(now time.Time) error {
	if r.status != StatusHoldOn {
		return ErrStaleRequestState
	}
	r.status = StatusPending
	r.updatedAt = now
	return nil
}
