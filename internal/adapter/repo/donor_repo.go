package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bloodbank/internal/domain"
	"bloodbank/internal/sqlinline"
)

// GetAllDonors lists donors ordered by NRIC.
func (r *RepositoryPG) GetAllDonors(ctx context.Context) ([]domain.Donor, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectDonors)
	if err != nil {
		return nil, storeErr("list donors", err)
	}
	defer rows.Close()

	var items []domain.Donor
	for rows.Next() {
		donor, err := scanDonor(rows)
		if err != nil {
			return nil, storeErr("scan donor", err)
		}
		items = append(items, *donor)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list donors", err)
	}
	return items, nil
}

// GetDonorByNRIC fetches one donor.
func (r *RepositoryPG) GetDonorByNRIC(ctx context.Context, nric string) (*domain.Donor, error) {
	donor, err := scanDonor(r.sql.QueryRow(ctx, sqlinline.QSelectDonorByNRIC, nric))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("donor", nric)
		}
		return nil, storeErr("get donor", err)
	}
	return donor, nil
}

// InsertDonor registers a donor. A zero RegistrationDate is stamped by the
// database and written back.
func (r *RepositoryPG) InsertDonor(ctx context.Context, donor *domain.Donor) error {
	donor.Normalize()
	row := r.sql.QueryRow(ctx, sqlinline.QInsertDonor,
		donor.NRIC,
		donor.Name,
		donor.DateOfBirth,
		donor.ContactNo,
		donor.BloodType.ID(),
		nullableTime(donor.RegistrationDate),
	)
	if err := row.Scan(&donor.RegistrationDate); err != nil {
		return storeErr(fmt.Sprintf("insert donor %s", donor.NRIC), err)
	}
	return nil
}

// UpdateDonor rewrites the mutable donor fields.
func (r *RepositoryPG) UpdateDonor(ctx context.Context, donor *domain.Donor) error {
	donor.Normalize()
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateDonor,
		donor.NRIC,
		donor.Name,
		donor.DateOfBirth,
		donor.ContactNo,
		donor.BloodType.ID(),
	)
	if err != nil {
		return storeErr("update donor", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("donor", donor.NRIC)
	}
	return nil
}

// DeleteDonorByNRIC removes a donor that has no ledger entries.
func (r *RepositoryPG) DeleteDonorByNRIC(ctx context.Context, nric string) error {
	return r.inTx(ctx, func(tx *RepositoryPG) error {
		var count int64
		if err := tx.sql.QueryRow(ctx, sqlinline.QCountDonationsByDonor, nric).Scan(&count); err != nil {
			return storeErr("count donor donations", err)
		}
		if count > 0 {
			return domain.Invalid("nric", "donor has recorded donations")
		}
		tag, err := tx.sql.Exec(ctx, sqlinline.QDeleteDonor, nric)
		if err != nil {
			return storeErr("delete donor", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NotFound("donor", nric)
		}
		return nil
	})
}

func scanDonor(row pgx.Row) (*domain.Donor, error) {
	var d domain.Donor
	var bloodType string
	if err := row.Scan(&d.NRIC, &d.Name, &d.DateOfBirth, &d.ContactNo, &bloodType, &d.RegistrationDate); err != nil {
		return nil, err
	}
	d.BloodType = domain.BloodType(bloodType)
	return &d, nil
}
