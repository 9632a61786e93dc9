package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"

	"bloodbank/internal/domain"
)

func (r *Repository) GetAllRequests(ctx context.Context) ([]domain.BloodRequest, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT data FROM documents WHERE collection = ?`, colRequests)
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	var docs []requestDoc
	for rows.Next() {
		var doc requestDoc
		if err := scanJSON(rows, &doc); err != nil {
			rows.Close()
			return nil, storeErr("scan request", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storeErr("list requests", err)
	}
	rows.Close()

	rs := r.newResolver()
	items := make([]domain.BloodRequest, 0, len(docs))
	for _, doc := range docs {
		req := doc.toDomain()
		if req.RequesterUsername, err = rs.staffUsername(ctx, doc.RequesterID); err != nil {
			return nil, storeErr("list requests", err)
		}
		items = append(items, req)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].RequestedAt.Equal(items[j].RequestedAt) {
			return items[i].RequestedAt.After(items[j].RequestedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *Repository) GetRequestByID(ctx context.Context, id int64) (*domain.BloodRequest, error) {
	doc, err := r.getRequestDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	req := doc.toDomain()
	if req.RequesterUsername, err = r.newResolver().staffUsername(ctx, doc.RequesterID); err != nil {
		return nil, storeErr("get request", err)
	}
	return &req, nil
}

func (r *Repository) getRequestDoc(ctx context.Context, id int64) (*requestDoc, error) {
	var doc requestDoc
	if err := getDoc(ctx, r.q, idPath(colRequests, id), &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("request", id)
		}
		return nil, storeErr("get request", err)
	}
	return &doc, nil
}

func (r *Repository) InsertRequest(ctx context.Context, request *domain.BloodRequest) error {
	return r.inTx(ctx, func(tx *Repository) error {
		if _, err := tx.GetStaffByID(ctx, request.RequesterID); err != nil {
			return err
		}
		id, err := nextID(ctx, tx.q, colRequests)
		if err != nil {
			return storeErr("insert request", err)
		}
		requestedAt := request.RequestedAt
		if requestedAt.IsZero() {
			requestedAt = time.Now().UTC().Truncate(time.Microsecond)
		}
		doc := requestDoc{
			ID:          id,
			RequesterID: request.RequesterID,
			BloodType:   request.BloodType,
			Quantity:    request.Quantity,
			RequestedAt: requestedAt,
			Address:     request.Address,
			Status:      domain.RequestStatusPending,
			Fulfilled:   false,
		}
		if err := putDoc(ctx, tx.q, idPath(colRequests, id), colRequests, strconv.FormatInt(id, 10), "", doc); err != nil {
			return storeErr("insert request", err)
		}
		request.ID = id
		request.RequestedAt = requestedAt
		request.Status = domain.RequestStatusPending
		request.Fulfilled = false
		return nil
	})
}

// FulfillRequest verifies every donation, claims each one with a
// conditional update and marks the request delivered, in one transaction.
func (r *Repository) FulfillRequest(ctx context.Context, requestID int64, donationIDs []int64) (*domain.BloodRequest, error) {
	ids := slices.Clone(donationIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, domain.Invalid("donationIds", "at least one donation is required")
	}

	var out *domain.BloodRequest
	err := r.inTx(ctx, func(tx *Repository) error {
		doc, err := tx.getRequestDoc(ctx, requestID)
		if err != nil {
			return err
		}
		if doc.Fulfilled {
			return fmt.Errorf("request %d: %w", requestID, domain.ErrAlreadyFulfilled)
		}

		var missing, used []int64
		for _, id := range ids {
			raws, err := tx.loadDonations(ctx, "doc_id = ?", strconv.FormatInt(id, 10))
			if err != nil {
				return storeErr("load donation", err)
			}
			switch {
			case len(raws) == 0:
				missing = append(missing, id)
			case raws[0].doc.UsedBy != nil:
				used = append(used, id)
			}
		}
		if len(missing) > 0 {
			return domain.DonationsNotFound(missing)
		}
		if len(used) > 0 {
			return &domain.AlreadyUsedError{DonationIDs: used}
		}

		for _, id := range ids {
			if err := tx.claimDonation(ctx, id, requestID); err != nil {
				return err
			}
		}

		doc.Status = domain.RequestStatusDelivered
		doc.Fulfilled = true
		data, err := encodeJSON(doc)
		if err != nil {
			return storeErr("mark request delivered", err)
		}
		res, err := tx.q.ExecContext(ctx,
			`UPDATE documents SET data = ? WHERE path = ? AND json_extract(data, '$.fulfilled') = 0`,
			data, idPath(colRequests, requestID))
		if err != nil {
			return storeErr("mark request delivered", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return storeErr("mark request delivered", err)
		} else if n != 1 {
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
