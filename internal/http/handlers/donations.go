package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"bloodbank/internal/ledger"
)

type recordDonationRequest struct {
	DonorNRIC   string          `json:"donorNric"`
	Quantity    decimal.Decimal `json:"quantity"`
	BranchID    int64           `json:"branchId"`
	CollectedAt *time.Time      `json:"collectedAt"`
}

func (a *App) ListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := a.Ledger.All(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(donations))
}

// RecordDonation books a donation against the calling staff member. The
// branch defaults to the staff member's own branch.
func (a *App) RecordDonation(w http.ResponseWriter, r *http.Request) {
	staff := a.currentStaff(r)
	var body recordDonationRequest
	if err := a.decode(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	params := ledger.RecordParams{
		DonorNRIC:  body.DonorNRIC,
		Quantity:   body.Quantity,
		BranchID:   body.BranchID,
		RecordedBy: staff.ID,
	}
	if params.BranchID == 0 {
		params.BranchID = staff.BranchID
	}
	if body.CollectedAt != nil {
		params.CollectedAt = *body.CollectedAt
	}

	donation, err := a.Ledger.Record(r.Context(), params)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, donation)
}

func (a *App) AvailableDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := a.Ledger.Available(r.Context(), r.URL.Query().Get("bloodType"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(donations))
}
