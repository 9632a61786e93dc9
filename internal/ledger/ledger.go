// Package ledger records donations and answers ledger queries. Donations are
// appended once and only ever change by the one-way usedBy transition.
package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
)

// Ledger is the donation ledger over a domain.Repository.
type Ledger struct {
	repo   domain.Repository
	clock  domain.Clock
	logger zerolog.Logger
}

// New wires a Ledger. A nil clock reads the wall clock.
func New(repo domain.Repository, clock domain.Clock, logger zerolog.Logger) *Ledger {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Ledger{repo: repo, clock: clock, logger: logger}
}

// RecordParams describes one collected donation.
type RecordParams struct {
	DonorNRIC   string          `json:"donorNric"`
	Quantity    decimal.Decimal `json:"quantity"`
	BranchID    int64           `json:"branchId"`
	RecordedBy  int64           `json:"recordedBy"`
	CollectedAt time.Time       `json:"collectedAt"`
}

func (p *RecordParams) validate() error {
	p.DonorNRIC = domain.NormalizeNRIC(p.DonorNRIC)
	if err := domain.ValidateNRIC(p.DonorNRIC); err != nil {
		return err
	}
	if err := domain.ValidateQuantity("quantity", p.Quantity); err != nil {
		return err
	}
	if p.BranchID <= 0 {
		return domain.Invalid("branchId", "is required")
	}
	if p.RecordedBy <= 0 {
		return domain.Invalid("recordedBy", "is required")
	}
	return nil
}

// Record appends an available donation and returns it with its display joins.
func (l *Ledger) Record(ctx context.Context, params RecordParams) (*domain.Donation, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if params.CollectedAt.IsZero() {
		params.CollectedAt = l.clock.Now()
	}

	var out *domain.Donation
	err := l.repo.Do(ctx, func(tx domain.Repository) error {
		if _, err := tx.GetDonorByNRIC(ctx, params.DonorNRIC); err != nil {
			return err
		}
		if _, err := tx.GetBranchByID(ctx, params.BranchID); err != nil {
			return err
		}
		if _, err := tx.GetStaffByID(ctx, params.RecordedBy); err != nil {
			return err
		}

		donation := &domain.Donation{
			DonorNRIC:   params.DonorNRIC,
			Quantity:    params.Quantity,
			CollectedAt: params.CollectedAt,
			BranchID:    params.BranchID,
			RecordedBy:  params.RecordedBy,
		}
		if err := tx.InsertDonation(ctx, donation); err != nil {
			return err
		}
		stored, err := tx.GetDonationByID(ctx, donation.ID)
		if err != nil {
			return err
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Int64("donation_id", out.ID).
		Str("nric", out.DonorNRIC).
		Str("blood_type", string(out.BloodType)).
		Str("quantity", out.Quantity.String()).
		Int64("branch_id", out.BranchID).
		Msg("donation recorded")
	return out, nil
}

// ByDonor lists a donor's donations by id.
func (l *Ledger) ByDonor(ctx context.Context, nric string) ([]domain.Donation, error) {
	nric = domain.NormalizeNRIC(nric)
	if err := domain.ValidateNRIC(nric); err != nil {
		return nil, err
	}
	if _, err := l.repo.GetDonorByNRIC(ctx, nric); err != nil {
		return nil, err
	}
	return l.repo.GetDonationsByDonor(ctx, nric)
}

// Available lists unconsumed donations of a blood type, oldest first.
func (l *Ledger) Available(ctx context.Context, bloodType string) ([]domain.Donation, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	return l.repo.GetAvailableDonationsByBloodType(ctx, bt)
}

// All lists the whole ledger, newest first with ties broken by id.
func (l *Ledger) All(ctx context.Context) ([]domain.Donation, error) {
	return l.repo.GetAllDonations(ctx)
}

// MarkUsed consumes one donation for a request. A donation that is already
// used yields *domain.AlreadyUsedError, even for the same request.
func (l *Ledger) MarkUsed(ctx context.Context, donationID, requestID int64) error {
	if donationID <= 0 {
		return domain.Invalid("donationId", "must be positive")
	}
	if requestID <= 0 {
		return domain.Invalid("requestId", "must be positive")
	}
	if err := l.repo.MarkDonationUsed(ctx, donationID, requestID); err != nil {
		return err
	}
	l.logger.Info().Int64("donation_id", donationID).Int64("request_id", requestID).Msg("donation marked used")
	return nil
}
