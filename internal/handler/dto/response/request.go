package response

import (
	"time"

	"giveflow/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RequestResponse struct {
	ID            uuid.UUID   `json:"id"`
	ItemID        uuid.UUID   `json:"itemId"`
	ItemTitle     string      `json:"itemTitle"`
	RequesterID   uuid.UUID   `json:"requesterId"`
	OwnerID       uuid.UUID   `json:"ownerId"`
	Kind          string      `json:"kind"`
	CounterItemID *uuid.UUID  `json:"counterItemId,omitempty"`
	CampaignID    *uuid.UUID  `json:"campaignId,omitempty"`
	Candidates    []time.Time `json:"candidates"`
	Status        string      `json:"status"`
	RejectReason  string      `json:"rejectReason,omitempty"`
	ChosenAt      *time.Time  `json:"chosenAt,omitempty"`
	VolunteerID   *uuid.UUID  `json:"volunteerId,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func FromRequestView(view *queries.RequestView) *RequestResponse {
	var resp RequestResponse
	_ = copier.Copy(&resp, view)
	resp.Kind = string(view.Kind)
	resp.Status = string(view.Status)
	return &resp
}

func FromRequestViews(views []queries.RequestView) []*RequestResponse {
	out := make([]*RequestResponse, len(views))
	for i := range views {
		out[i] = FromRequestView(&views[i])
	}
	return out
}

type CreateRequestResponse struct {
	RequestID uuid.UUID `json:"requestId"`
}

type ApproveRequestResponse struct {
	TransactionID uuid.UUID   `json:"transactionId"`
	HeldRequests  []uuid.UUID `json:"heldRequests"`
}
