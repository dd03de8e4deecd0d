package handoff

import (
	"crypto/subtle"
	"strings"
	"time"

	"giveflow/internal/domain/geo"
	"giveflow/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrRequestNotApproved    = errs.New("transaction requires an approved request")
	ErrNotParticipant        = errs.New("actor is not a transaction participant")
	ErrNotTravelingParty     = errs.New("only the traveling party reports arrival")
	ErrNotRevealingParty     = errs.New("only the requester reveals the code")
	ErrNotReceivingParty     = errs.New("only the receiving party verifies and settles")
	ErrNotYetInRange         = errs.New("not yet at the handoff location")
	ErrCodeMismatch          = errs.New("verification code mismatch")
	ErrNotYetVerified        = errs.New("handoff is not verified yet")
	ErrNoEvidence            = errs.New("at least one evidence image is required")
	ErrEmptyRejectMessage    = errs.New("reject message is required")
	ErrInvalidCancelWindow   = errs.New("cannot cancel before the appointment time")
	ErrStaleTransactionState = errs.New("transaction is not in progress")
)

// Transaction is the handoff spawned from exactly one approved
// request. The appointment instant is bound at creation and never
// mutated. Advancement is gated by arrival proximity and mutual code
// verification; terminal settlement requires both.
type Transaction struct {
	id            uuid.UUID
	requestID     uuid.UUID
	itemID        uuid.UUID
	charitarianID uuid.UUID
	requesterID   uuid.UUID
	volunteerID   *uuid.UUID
	appointmentAt time.Time
	status        Status
	arrived       bool
	verified      bool
	code          string
	evidenceURLs  []string
	rejectMessage string
	createdAt     time.Time
	updatedAt     time.Time
}

func NewTransaction(
	requestID, itemID, charitarianID, requesterID uuid.UUID,
	volunteerID *uuid.UUID,
	appointmentAt time.Time,
	code string,
	now time.Time,
) *Transaction {
	return &Transaction{
		id:            uuid.New(),
		requestID:     requestID,
		itemID:        itemID,
		charitarianID: charitarianID,
		requesterID:   requesterID,
		volunteerID:   volunteerID,
		appointmentAt: appointmentAt,
		status:        StatusInProgress,
		code:          code,
		createdAt:     now,
		updatedAt:     now,
	}
}

func ReconstructTransaction(
	id, requestID, itemID, charitarianID, requesterID uuid.UUID,
	volunteerID *uuid.UUID,
	appointmentAt time.Time,
	status Status,
	arrived, verified bool,
	code string,
	evidenceURLs []string,
	rejectMessage string,
	createdAt, updatedAt time.Time,
) *Transaction {
	return &Transaction{
		id:            id,
		requestID:     requestID,
		itemID:        itemID,
		charitarianID: charitarianID,
		requesterID:   requesterID,
		volunteerID:   volunteerID,
		appointmentAt: appointmentAt,
		status:        status,
		arrived:       arrived,
		verified:      verified,
		code:          code,
		evidenceURLs:  evidenceURLs,
		rejectMessage: rejectMessage,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (t *Transaction) ID() uuid.UUID            { return t.id }
func (t *Transaction) RequestID() uuid.UUID     { return t.requestID }
func (t *Transaction) ItemID() uuid.UUID        { return t.itemID }
func (t *Transaction) CharitarianID() uuid.UUID { return t.charitarianID }
func (t *Transaction) RequesterID() uuid.UUID   { return t.requesterID }
func (t *Transaction) VolunteerID() *uuid.UUID  { return t.volunteerID }
func (t *Transaction) AppointmentAt() time.Time { return t.appointmentAt }
func (t *Transaction) Status() Status           { return t.status }
func (t *Transaction) Arrived() bool            { return t.arrived }
func (t *Transaction) Verified() bool           { return t.verified }
func (t *Transaction) Code() string             { return t.code }
func (t *Transaction) RejectMessage() string    { return t.rejectMessage }
func (t *Transaction) CreatedAt() time.Time     { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time     { return t.updatedAt }

func (t *Transaction) EvidenceURLs() []string {
	out := make([]string, len(t.evidenceURLs))
	copy(out, t.evidenceURLs)
	return out
}

// travelingPartyID is whoever physically goes to the handoff address:
// the volunteer courier on campaign paths, otherwise the requester.
func (t *Transaction) travelingPartyID() uuid.UUID {
	if t.volunteerID != nil {
		return *t.volunteerID
	}
	return t.requesterID
}

// receivingPartyID scans the code and settles the outcome: the item
// owner on direct paths, the volunteer on campaign paths.
func (t *Transaction) receivingPartyID() uuid.UUID {
	if t.volunteerID != nil {
		return *t.volunteerID
	}
	return t.charitarianID
}

func (t *Transaction) IsParticipant(actorID uuid.UUID) bool {
	if actorID == t.charitarianID || actorID == t.requesterID {
		return true
	}
	return t.volunteerID != nil && actorID == *t.volunteerID
}

// MarkArrived evaluates the traveling party's latest reported position
// against the handoff destination. Calling again after arrival is a
// no-op.
func (t *Transaction) MarkArrived(gate geo.Gate, actorID uuid.UUID, party, destination geo.Coordinates, now time.Time) error {
	if t.status != StatusInProgress {
		return ErrStaleTransactionState
	}
	if actorID != t.travelingPartyID() {
		return ErrNotTravelingParty
	}
	if t.arrived {
		return nil
	}
	if !gate.InRange(party, destination) {
		return ErrNotYetInRange
	}
	t.arrived = true
	t.updatedAt = now
	return nil
}

// RevealCode discloses the display code to the requester. Arrival is
// the sole capability gate for disclosure.
func (t *Transaction) RevealCode(actorID uuid.UUID) (string, error) {
	if t.status != StatusInProgress {
		return "", ErrStaleTransactionState
	}
	if actorID != t.requesterID {
		return "", ErrNotRevealingParty
	}
	if !t.arrived {
		return "", ErrNotYetInRange
	}
	return t.code, nil
}

// SubmitCode is the receiving party entering or scanning the revealed
// code. A mismatch leaves state untouched; retries are allowed.
func (t *Transaction) SubmitCode(actorID uuid.UUID, presented string, now time.Time) error {
	if t.status != StatusInProgress {
		return ErrStaleTransactionState
	}
	if actorID != t.receivingPartyID() {
		return ErrNotReceivingParty
	}
	if !t.arrived {
		return ErrNotYetInRange
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(t.code)) != 1 {
		return ErrCodeMismatch
	}
	t.verified = true
	t.updatedAt = now
	return nil
}

func (t *Transaction) Confirm(actorID uuid.UUID, evidenceURLs []string, now time.Time) error {
	if t.status != StatusInProgress {
		return ErrStaleTransactionState
	}
	if actorID != t.receivingPartyID() {
		return ErrNotReceivingParty
	}
	if !t.verified {
		return ErrNotYetVerified
	}
	if len(evidenceURLs) == 0 {
		return ErrNoEvidence
	}
	t.status = StatusCompleted
	t.evidenceURLs = evidenceURLs
	t.updatedAt = now
	return nil
}

func (t *Transaction) Reject(actorID uuid.UUID, message string, evidenceURLs []string, now time.Time) error {
	if t.status != StatusInProgress {
		return ErrStaleTransactionState
	}
	if actorID != t.receivingPartyID() {
		return ErrNotReceivingParty
	}
	if !t.verified {
		return ErrNotYetVerified
	}
	if strings.TrimSpace(message) == "" {
		return ErrEmptyRejectMessage
	}
	t.status = StatusNotCompleted
	t.rejectMessage = strings.TrimSpace(message)
	t.evidenceURLs = evidenceURLs
	t.updatedAt = now
	return nil
}

// Cancel is the no-show rule: a party may walk away only once the
// appointment instant has passed, evaluated lazily against the
// injected clock.
func (t *Transaction) Cancel(actorID uuid.UUID, now time.Time) error {
	if t.status != StatusInProgress {
		return ErrStaleTransactionState
	}
	if !t.IsParticipant(actorID) {
		return ErrNotParticipant
	}
	if !now.After(t.appointmentAt) {
		return ErrInvalidCancelWindow
	}
	t.status = StatusCanceled
	t.updatedAt = now
	return nil
}

// ConfirmableInBatch is the lenient-batch filter: only in-progress,
// verified transactions participate; the rest are skipped, not failed.
func (t *Transaction) ConfirmableInBatch() bool {
	return t.status == StatusInProgress && t.verified
}
