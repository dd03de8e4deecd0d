package response

import (
	"time"

	"giveflow/internal/usecase/commands"
	"giveflow/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type TransactionResponse struct {
	ID            uuid.UUID  `json:"id"`
	RequestID     uuid.UUID  `json:"requestId"`
	ItemID        uuid.UUID  `json:"itemId"`
	ItemTitle     string     `json:"itemTitle"`
	CharitarianID uuid.UUID  `json:"charitarianId"`
	RequesterID   uuid.UUID  `json:"requesterId"`
	VolunteerID   *uuid.UUID `json:"volunteerId,omitempty"`
	AppointmentAt time.Time  `json:"appointmentAt"`
	Status        string     `json:"status"`
	Arrived       bool       `json:"arrived"`
	Verified      bool       `json:"verified"`
	EvidenceURLs  []string   `json:"evidenceUrls,omitempty"`
	RejectMessage string     `json:"rejectMessage,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func FromTransactionView(view *queries.TransactionView) *TransactionResponse {
	var resp TransactionResponse
	_ = copier.Copy(&resp, view)
	resp.Status = string(view.Status)
	return &resp
}

func FromTransactionViews(views []queries.TransactionView) []*TransactionResponse {
	out := make([]*TransactionResponse, len(views))
	for i := range views {
		out[i] = FromTransactionView(&views[i])
	}
	return out
}

type RevealCodeResponse struct {
	Code string `json:"code"`
}

type BatchConfirmResponse struct {
	Confirmed []uuid.UUID `json:"confirmed"`
	Skipped   []uuid.UUID `json:"skipped"`
}

func FromBatchConfirmResult(result *commands.BatchConfirmResult) *BatchConfirmResponse {
	return &BatchConfirmResponse{
		Confirmed: result.Confirmed,
		Skipped:   result.Skipped,
	}
}
