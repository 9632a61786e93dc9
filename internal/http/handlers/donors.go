package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/domain"
)

type donorPayload struct {
	NRIC        string `json:"nric"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	ContactNo   string `json:"contactNo"`
	BloodType   string `json:"bloodType"`
}

// toDonor accepts dateOfBirth as YYYY-MM-DD or RFC 3339.
func (p donorPayload) toDonor() (*domain.Donor, error) {
	donor := &domain.Donor{
		NRIC:      p.NRIC,
		Name:      p.Name,
		ContactNo: p.ContactNo,
		BloodType: domain.BloodType(p.BloodType),
	}
	if raw := strings.TrimSpace(p.DateOfBirth); raw != "" {
		dob, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			if dob, err = time.Parse(time.RFC3339, raw); err != nil {
				return nil, domain.Invalid("dateOfBirth", "must be YYYY-MM-DD")
			}
		}
		donor.DateOfBirth = dob
	}
	donor.Normalize()
	return donor, nil
}

func (a *App) ListDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := a.Repo.GetAllDonors(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(donors))
}

func (a *App) CreateDonor(w http.ResponseWriter, r *http.Request) {
	var body donorPayload
	if err := a.decode(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	donor, err := body.toDonor()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := donor.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Repo.InsertDonor(r.Context(), donor); err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger(r).Info().Str("nric", donor.NRIC).Msg("donor registered")
	a.json(w, http.StatusCreated, donor)
}

func (a *App) GetDonor(w http.ResponseWriter, r *http.Request) {
	nric := domain.NormalizeNRIC(chi.URLParam(r, "nric"))
	donor, err := a.Repo.GetDonorByNRIC(r.Context(), nric)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, donor)
}

// UpdateDonor replaces the mutable fields. The NRIC in the path wins over
// any NRIC in the body.
func (a *App) UpdateDonor(w http.ResponseWriter, r *http.Request) {
	var body donorPayload
	if err := a.decode(r, &body); err != nil {
		a.fail(w, r, err)
		return
	}
	body.NRIC = chi.URLParam(r, "nric")
	donor, err := body.toDonor()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := donor.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}

	ctx := r.Context()
	if err := a.Repo.UpdateDonor(ctx, donor); err != nil {
		a.fail(w, r, err)
		return
	}
	updated, err := a.Repo.GetDonorByNRIC(ctx, donor.NRIC)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, updated)
}

func (a *App) DeleteDonor(w http.ResponseWriter, r *http.Request) {
	nric := domain.NormalizeNRIC(chi.URLParam(r, "nric"))
	if err := a.Repo.DeleteDonorByNRIC(r.Context(), nric); err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger(r).Info().Str("nric", nric).Msg("donor deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) DonorDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := a.Ledger.ByDonor(r.Context(), chi.URLParam(r, "nric"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(donations))
}
