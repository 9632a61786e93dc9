package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"bloodbank/internal/domain"
	"bloodbank/internal/sqlinline"
)

// GetAllBranches lists branches by id.
func (r *RepositoryPG) GetAllBranches(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectBranches)
	if err != nil {
		return nil, storeErr("list branches", err)
	}
	defer rows.Close()

	var items []domain.Branch
	for rows.Next() {
		branch, err := scanBranch(rows)
		if err != nil {
			return nil, storeErr("scan branch", err)
		}
		items = append(items, *branch)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list branches", err)
	}
	return items, nil
}

func (r *RepositoryPG) GetBranchByID(ctx context.Context, id int64) (*domain.Branch, error) {
	branch, err := scanBranch(r.sql.QueryRow(ctx, sqlinline.QSelectBranchByID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("branch", id)
		}
		return nil, storeErr("get branch", err)
	}
	return branch, nil
}

func (r *RepositoryPG) GetStaffByID(ctx context.Context, id int64) (*domain.Staff, error) {
	var s domain.Staff
	err := r.sql.QueryRow(ctx, sqlinline.QSelectStaffByID, id).Scan(&s.ID, &s.Username, &s.Name, &s.BranchID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("staff", id)
		}
		return nil, storeErr("get staff", err)
	}
	return &s, nil
}

// GetBloodTypeID resolves the lookup-table id of a canonical blood type.
func (r *RepositoryPG) GetBloodTypeID(ctx context.Context, bloodType domain.BloodType) (int, error) {
	var id int
	if err := r.sql.QueryRow(ctx, sqlinline.QSelectBloodTypeID, string(bloodType)).Scan(&id); err != nil {
		if isNoRows(err) {
			return 0, domain.NotFound("blood type", bloodType)
		}
		return 0, storeErr("get blood type id", err)
	}
	return id, nil
}

func (r *RepositoryPG) UpsertBranches(ctx context.Context, branches []domain.Branch) error {
	return r.inTx(ctx, func(tx *RepositoryPG) error {
		for _, b := range branches {
			if _, err := tx.sql.Exec(ctx, sqlinline.QUpsertBranch, b.ID, b.Name, b.Address, b.PostalCode); err != nil {
				return storeErr("upsert branch", err)
			}
		}
		return nil
	})
}

func (r *RepositoryPG) UpsertStaff(ctx context.Context, staff []domain.Staff) error {
	return r.inTx(ctx, func(tx *RepositoryPG) error {
		for _, s := range staff {
			if _, err := tx.sql.Exec(ctx, sqlinline.QUpsertStaff, s.ID, s.Username, s.Name, s.BranchID); err != nil {
				return storeErr("upsert staff", err)
			}
		}
		return nil
	})
}

func scanBranch(row pgx.Row) (*domain.Branch, error) {
	var b domain.Branch
	if err := row.Scan(&b.ID, &b.Name, &b.Address, &b.PostalCode); err != nil {
		return nil, err
	}
	return &b, nil
}
