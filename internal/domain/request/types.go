package request

import "github.com/google/uuid"

type Status string

const (
	StatusPending  Status = "pending"
	StatusHoldOn   Status = "hold_on"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusCanceled Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusHoldOn, StatusApproved, StatusRejected, StatusCanceled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the request can still be acted on.
// Hold_On is a system-imposed sub-state of Pending.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusHoldOn
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCanceled
}

type KindTag string

const (
	KindGift             KindTag = "gift"
	KindExchange         KindTag = "exchange"
	KindCampaignDonation KindTag = "campaign_donation"
)

// Kind is the request shape as a tagged variant: a plain gift, an
// exchange carrying the requester's counter item, or a campaign
// donation routed through a volunteer courier. Each variant carries
// only the fields it needs.
type Kind struct {
	tag           KindTag
	counterItemID uuid.UUID
	campaignID    uuid.UUID
}

func Gift() Kind {
	return Kind{tag: KindGift}
}

func Exchange(counterItemID uuid.UUID) Kind {
	return Kind{tag: KindExchange, counterItemID: counterItemID}
}

func CampaignDonation(campaignID uuid.UUID) Kind {
	return Kind{tag: KindCampaignDonation, campaignID: campaignID}
}

func (k Kind) Tag() KindTag { return k.tag }

func (k Kind) CounterItemID() (uuid.UUID, bool) {
	return k.counterItemID, k.tag == KindExchange
}

func (k Kind) CampaignID() (uuid.UUID, bool) {
	return k.campaignID, k.tag == KindCampaignDonation
}

// ReconstructKind rebuilds a variant from persisted columns.
func ReconstructKind(tag KindTag, counterItemID, campaignID *uuid.UUID) Kind {
	k := Kind{tag: tag}
	if counterItemID != nil {
		k.counterItemID = *counterItemID
	}
	if campaignID != nil {
		k.campaignID = *campaignID
	}
	return k
}
