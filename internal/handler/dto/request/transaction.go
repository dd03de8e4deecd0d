package request

import (
	"giveflow/internal/domain/geo"

	"github.com/google/uuid"
)

type ArrivedRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

func (r ArrivedRequest) ToCoordinates() geo.Coordinates {
	return geo.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

type SubmitCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// RejectTransactionRequest rides the multipart form next to the
// evidence files.
type RejectTransactionRequest struct {
	Message string `form:"message" binding:"required"`
}

type BatchConfirmRequest struct {
	TransactionIDs []uuid.UUID `form:"transaction_ids" binding:"required,min=1"`
}
