package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
	"bloodbank/internal/sqlinline"
)

// GetAllRequests lists requests newest first.
func (r *RepositoryPG) GetAllRequests(ctx context.Context) ([]domain.BloodRequest, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectRequests)
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	defer rows.Close()

	var items []domain.BloodRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, storeErr("scan request", err)
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list requests", err)
	}
	return items, nil
}

// GetRequestByID fetches one request.
func (r *RepositoryPG) GetRequestByID(ctx context.Context, id int64) (*domain.BloodRequest, error) {
	req, err := scanRequest(r.sql.QueryRow(ctx, sqlinline.QSelectRequestByID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("request", id)
		}
		return nil, storeErr("get request", err)
	}
	return req, nil
}

// InsertRequest stores a pending request and writes back id and timestamp.
func (r *RepositoryPG) InsertRequest(ctx context.Context, request *domain.BloodRequest) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertRequest,
		request.RequesterID,
		request.BloodType.ID(),
		request.Quantity.String(),
		nullableTime(request.RequestedAt),
		request.Address,
	)
	if err := row.Scan(&request.ID, &request.RequestedAt); err != nil {
		return storeErr("insert request", err)
	}
	request.Status = domain.RequestStatusPending
	request.Fulfilled = false
	return nil
}

// FulfillRequest locks the request and every donation row, verifies them,
// then flips usedBy with a conditional update. Everything happens in one
// transaction; any failure rolls all of it back.
func (r *RepositoryPG) FulfillRequest(ctx context.Context, requestID int64, donationIDs []int64) (*domain.BloodRequest, error) {
	ids := uniqueIDs(donationIDs)
	if len(ids) == 0 {
		return nil, domain.Invalid("donationIds", "at least one donation is required")
	}

	var out *domain.BloodRequest
	err := r.inTx(ctx, func(tx *RepositoryPG) error {
		var fulfilled bool
		if err := tx.sql.QueryRow(ctx, sqlinline.QLockRequest, requestID).Scan(&fulfilled); err != nil {
			if isNoRows(err) {
				return domain.NotFound("request", requestID)
			}
			return storeErr("lock request", err)
		}
		if fulfilled {
			return fmt.Errorf("request %d: %w", requestID, domain.ErrAlreadyFulfilled)
		}

		if err := tx.lockAvailable(ctx, ids); err != nil {
			return err
		}

		tag, err := tx.sql.Exec(ctx, sqlinline.QMarkDonationsUsed, requestID, ids)
		if err != nil {
			return storeErr("mark donations used", err)
		}
		if tag.RowsAffected() != int64(len(ids)) {
			return &domain.AlreadyUsedError{DonationIDs: ids}
		}

		tag, err = tx.sql.Exec(ctx, sqlinline.QMarkRequestDelivered, requestID)
		if err != nil {
			return storeErr("mark request delivered", err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("request %d: %w", requestID, domain.ErrAlreadyFulfilled)
		}

		out, err = tx.GetRequestByID(ctx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lockAvailable row-locks ids and reports missing or consumed donations.
func (r *RepositoryPG) lockAvailable(ctx context.Context, ids []int64) error {
	rows, err := r.sql.Query(ctx, sqlinline.QLockDonations, ids)
	if err != nil {
		return storeErr("lock donations", err)
	}
	defer rows.Close()

	seen := make(map[int64]bool, len(ids))
	var used []int64
	for rows.Next() {
		var (
			id     int64
			usedBy *int64
		)
		if err := rows.Scan(&id, &usedBy); err != nil {
			return storeErr("lock donations", err)
		}
		seen[id] = true
		if usedBy != nil {
			used = append(used, id)
		}
	}
	if err := rows.Err(); err != nil {
		return storeErr("lock donations", err)
	}

	var missing []int64
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domain.DonationsNotFound(missing)
	}
	if len(used) > 0 {
		return &domain.AlreadyUsedError{DonationIDs: used}
	}
	return nil
}

func scanRequest(row pgx.Row) (*domain.BloodRequest, error) {
	var (
		req       domain.BloodRequest
		bloodType string
		qty       string
		status    string
	)
	if err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&bloodType,
		&qty,
		&req.RequestedAt,
		&req.Address,
		&status,
		&req.Fulfilled,
		&req.RequesterUsername,
	); err != nil {
		return nil, err
	}
	quantity, err := decimal.NewFromString(qty)
	if err != nil {
		return nil, fmt.Errorf("parse quantity %q: %w", qty, err)
	}
	req.Quantity = quantity
	req.BloodType = domain.BloodType(bloodType)
	req.Status = domain.RequestStatus(status)
	return &req, nil
}
