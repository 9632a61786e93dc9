package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus enumerates the lifecycle of a blood request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusDelivered RequestStatus = "Delivered"
)

// BloodRequest asks for blood of one type. Status and Fulfilled move together
// and only once, from Pending/false to Delivered/true.
type BloodRequest struct {
	ID                int64           `json:"id"`
	RequesterID       int64           `json:"requesterId"`
	BloodType         BloodType       `json:"bloodType"`
	Quantity          decimal.Decimal `json:"quantity"`
	RequestedAt       time.Time       `json:"requestedAt"`
	Address           string          `json:"address"`
	Status            RequestStatus   `json:"status"`
	Fulfilled         bool            `json:"fulfilled"`
	RequesterUsername string          `json:"requesterUsername,omitempty"`
}

// Pending reports whether the request still awaits fulfillment.
func (r BloodRequest) Pending() bool {
	return !r.Fulfilled
}

// MarkDelivered applies the one-way transition.
func (r *BloodRequest) MarkDelivered() {
	r.Status = RequestStatusDelivered
	r.Fulfilled = true
}

// StatusFor derives the status string from the fulfilled flag.
func StatusFor(fulfilled bool) RequestStatus {
	if fulfilled {
		return RequestStatusDelivered
	}
	return RequestStatusPending
}
