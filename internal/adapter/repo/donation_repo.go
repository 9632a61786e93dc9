package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
	"bloodbank/internal/sqlinline"
)

// GetAllDonations returns the ledger newest first, ties broken by id.
func (r *RepositoryPG) GetAllDonations(ctx context.Context) ([]domain.Donation, error) {
	return r.queryDonations(ctx, "list donations", sqlinline.QSelectDonations)
}

// GetDonationByID fetches one ledger entry.
func (r *RepositoryPG) GetDonationByID(ctx context.Context, id int64) (*domain.Donation, error) {
	donation, err := scanDonation(r.sql.QueryRow(ctx, sqlinline.QSelectDonationByID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("donation", id)
		}
		return nil, storeErr("get donation", err)
	}
	return &donation, nil
}

// GetDonationsByDonor returns a donor's donations in ledger order.
func (r *RepositoryPG) GetDonationsByDonor(ctx context.Context, nric string) ([]domain.Donation, error) {
	return r.queryDonations(ctx, "list donor donations", sqlinline.QSelectDonationsByDonor, nric)
}

// GetAvailableDonationsByBloodType returns unconsumed donations whose donor
// has the given blood type, oldest first.
func (r *RepositoryPG) GetAvailableDonationsByBloodType(ctx context.Context, bloodType domain.BloodType) ([]domain.Donation, error) {
	return r.queryDonations(ctx, "list available donations", sqlinline.QSelectAvailableDonationsByBloodType, string(bloodType))
}

// InsertDonation appends to the ledger and writes the generated id back.
func (r *RepositoryPG) InsertDonation(ctx context.Context, donation *domain.Donation) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertDonation,
		donation.DonorNRIC,
		donation.Quantity.String(),
		donation.CollectedAt,
		donation.BranchID,
		donation.RecordedBy,
	)
	if err := row.Scan(&donation.ID); err != nil {
		return storeErr("insert donation", err)
	}
	donation.UsedBy = nil
	return nil
}

// MarkDonationUsed performs the one-way usedBy transition as a conditional
// update. The request must exist; a miss is resolved into not-found or
// already-used.
func (r *RepositoryPG) MarkDonationUsed(ctx context.Context, donationID, requestID int64) error {
	return r.inTx(ctx, func(tx *RepositoryPG) error {
		if _, err := tx.GetRequestByID(ctx, requestID); err != nil {
			return err
		}
		tag, err := tx.sql.Exec(ctx, sqlinline.QMarkDonationUsed, donationID, requestID)
		if err != nil {
			return storeErr("mark donation used", err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		if _, err := tx.GetDonationByID(ctx, donationID); err != nil {
			return err
		}
		return &domain.AlreadyUsedError{DonationIDs: []int64{donationID}}
	})
}

func (r *RepositoryPG) queryDonations(ctx context.Context, op, query string, args ...any) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		items = append(items, donation)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return items, nil
}

func scanDonation(row pgx.Row) (domain.Donation, error) {
	var (
		d         domain.Donation
		qty       string
		bloodType string
	)
	if err := row.Scan(
		&d.ID,
		&d.DonorNRIC,
		&qty,
		&d.CollectedAt,
		&d.BranchID,
		&d.RecordedBy,
		&d.UsedBy,
		&bloodType,
		&d.BranchName,
		&d.RecordedByUsername,
	); err != nil {
		return d, err
	}
	quantity, err := decimal.NewFromString(qty)
	if err != nil {
		return d, fmt.Errorf("parse quantity %q: %w", qty, err)
	}
	d.Quantity = quantity
	d.BloodType = domain.BloodType(bloodType)
	return d, nil
}
