package request

import (
	"strings"
	"time"

	"giveflow/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateRequestRequest struct {
	ItemID        uuid.UUID   `json:"item_id" binding:"required"`
	Candidates    []time.Time `json:"candidates" binding:"required,min=1"`
	CounterItemID *uuid.UUID  `json:"counter_item_id,omitempty"`
	CampaignID    *uuid.UUID  `json:"campaign_id,omitempty"`
}

func (r CreateRequestRequest) ToInput() commands.CreateRequestInput {
	return commands.CreateRequestInput{
		ItemID:        r.ItemID,
		Candidates:    r.Candidates,
		CounterItemID: r.CounterItemID,
		CampaignID:    r.CampaignID,
	}
}

type ApproveRequestRequest struct {
	ChosenInstant time.Time  `json:"chosen_instant" binding:"required"`
	Message       *string    `json:"message,omitempty"`
	VolunteerID   *uuid.UUID `json:"volunteer_id,omitempty"`
}

func (r ApproveRequestRequest) ToInput() commands.ApproveRequestInput {
	in := commands.ApproveRequestInput{
		ChosenInstant: r.ChosenInstant,
		VolunteerID:   r.VolunteerID,
	}
	if r.Message != nil {
		in.Message = strings.TrimSpace(*r.Message)
	}
	return in
}

type RejectRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}
