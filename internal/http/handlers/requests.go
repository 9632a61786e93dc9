package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"bloodbank/internal/fulfillment"
)

type createRequestBody struct {
	BloodType string          `json:"bloodType"`
	Quantity  decimal.Decimal `json:"quantity"`
	Address   string          `json:"address"`
}

type fulfillBody struct {
	DonationIDs []int64 `json:"donationIds"`
}

func (a *App) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := a.Engine.Requests(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(requests))
}

func (a *App) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := a.decode(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	req, err := a.Engine.CreateRequest(r.Context(), fulfillment.NewRequest{
		RequesterID: a.currentStaff(r).ID,
		BloodType:   body.BloodType,
		Quantity:    body.Quantity,
		Address:     body.Address,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, req)
}

func (a *App) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	req, err := a.Engine.Request(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, req)
}

// FulfillRequest consumes the listed donations for the request.
func (a *App) FulfillRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var body fulfillBody
	if err := a.decode(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	result, err := a.Engine.Fulfill(r.Context(), id, body.DonationIDs)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}
