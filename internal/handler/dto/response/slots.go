package response

import (
	"time"

	"giveflow/internal/usecase/queries"
)

type SlotOptionsResponse struct {
	Date      string               `json:"date"`
	ValidDays []string             `json:"validDays"`
	Hours     []HourOptionResponse `json:"hours"`
}

type HourOptionResponse struct {
	Hour    int   `json:"hour"`
	Minutes []int `json:"minutes"`
	Busy    bool  `json:"busy"`
}

func FromSlotOptions(opts *queries.SlotOptions) *SlotOptionsResponse {
	days := make([]string, len(opts.ValidDays))
	for i, d := range opts.ValidDays {
		days[i] = d.String()
	}

	hours := make([]HourOptionResponse, len(opts.Hours))
	for i, h := range opts.Hours {
		hours[i] = HourOptionResponse{Hour: h.Hour, Minutes: h.Minutes, Busy: h.Busy}
	}

	return &SlotOptionsResponse{
		Date:      opts.Date.Format("2006-01-02"),
		ValidDays: days,
		Hours:     hours,
	}
}

type NextDateResponse struct {
	Date string `json:"date"`
}

func NewNextDateResponse(t time.Time) *NextDateResponse {
	return &NextDateResponse{Date: t.Format("2006-01-02")}
}
