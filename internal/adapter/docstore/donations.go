package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"bloodbank/internal/domain"
)

const availableClause = `json_extract(data, '$.usedBy') IS NULL`

// rawDonation is a donation document still detached from its parent donor.
type rawDonation struct {
	parent string
	doc    donationDoc
}

// loadDonations reads donation documents matching where. All rows are
// drained before any parent lookups run: with a single connection an open
// cursor would block them.
func (r *Repository) loadDonations(ctx context.Context, where string, args ...any) ([]rawDonation, error) {
	query := `SELECT parent, data FROM documents WHERE collection = ?`
	if where != "" {
		query += " AND " + where
	}
	rows, err := r.q.QueryContext(ctx, query, append([]any{colDonations}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rawDonation
	for rows.Next() {
		var parent, data string
		if err := rows.Scan(&parent, &data); err != nil {
			return nil, err
		}
		var doc donationDoc
		if err := decodeJSON(data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s donation: %w", parent, err)
		}
		out = append(out, rawDonation{parent: parent, doc: doc})
	}
	return out, rows.Err()
}

// resolver walks parent and reference documents once per key.
type resolver struct {
	repo     *Repository
	donors   map[string]*donorDoc
	branches map[int64]string
	staff    map[int64]string
}

func (r *Repository) newResolver() *resolver {
	return &resolver{
		repo:     r,
		donors:   map[string]*donorDoc{},
		branches: map[int64]string{},
		staff:    map[int64]string{},
	}
}

func (rs *resolver) donor(ctx context.Context, parent string) (*donorDoc, error) {
	if d, ok := rs.donors[parent]; ok {
		return d, nil
	}
	var doc donorDoc
	if err := getDoc(ctx, rs.repo.q, parent, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("donor", nricFromParent(parent))
		}
		return nil, err
	}
	rs.donors[parent] = &doc
	return &doc, nil
}

func (rs *resolver) branchName(ctx context.Context, id int64) (string, error) {
	if name, ok := rs.branches[id]; ok {
		return name, nil
	}
	b, err := rs.repo.GetBranchByID(ctx, id)
	if err != nil {
		return "", err
	}
	rs.branches[id] = b.Name
	return b.Name, nil
}

func (rs *resolver) staffUsername(ctx context.Context, id int64) (string, error) {
	if name, ok := rs.staff[id]; ok {
		return name, nil
	}
	s, err := rs.repo.GetStaffByID(ctx, id)
	if err != nil {
		return "", err
	}
	rs.staff[id] = s.Username
	return s.Username, nil
}

// hydrate turns a raw document into a domain donation with its joins.
func (rs *resolver) hydrate(ctx context.Context, raw rawDonation) (domain.Donation, error) {
	donor, err := rs.donor(ctx, raw.parent)
	if err != nil {
		return domain.Donation{}, err
	}
	branchName, err := rs.branchName(ctx, raw.doc.BranchID)
	if err != nil {
		return domain.Donation{}, err
	}
	username, err := rs.staffUsername(ctx, raw.doc.RecordedBy)
	if err != nil {
		return domain.Donation{}, err
	}
	return domain.Donation{
		ID:                 raw.doc.ID,
		DonorNRIC:          donor.NRIC,
		Quantity:           raw.doc.Quantity,
		CollectedAt:        raw.doc.CollectedAt,
		BranchID:           raw.doc.BranchID,
		RecordedBy:         raw.doc.RecordedBy,
		UsedBy:             raw.doc.UsedBy,
		BloodType:          donor.BloodType,
		BranchName:         branchName,
		RecordedByUsername: username,
	}, nil
}

func (r *Repository) hydrateAll(ctx context.Context, raws []rawDonation) ([]domain.Donation, error) {
	rs := r.newResolver()
	out := make([]domain.Donation, 0, len(raws))
	for _, raw := range raws {
		d, err := rs.hydrate(ctx, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// GetAllDonations is a collection-group read over every donor's donations,
// newest first, ties broken by id.
func (r *Repository) GetAllDonations(ctx context.Context) ([]domain.Donation, error) {
	raws, err := r.loadDonations(ctx, "")
	if err != nil {
		return nil, storeErr("list donations", err)
	}
	items, err := r.hydrateAll(ctx, raws)
	if err != nil {
		return nil, storeErr("list donations", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CollectedAt.Equal(items[j].CollectedAt) {
			return items[i].CollectedAt.After(items[j].CollectedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *Repository) GetDonationByID(ctx context.Context, id int64) (*domain.Donation, error) {
	raws, err := r.loadDonations(ctx, "doc_id = ?", strconv.FormatInt(id, 10))
	if err != nil {
		return nil, storeErr("get donation", err)
	}
	if len(raws) == 0 {
		return nil, domain.NotFound("donation", id)
	}
	d, err := r.newResolver().hydrate(ctx, raws[0])
	if err != nil {
		return nil, storeErr("get donation", err)
	}
	return &d, nil
}

// GetDonationsByDonor reads the donor's donations sub-collection in id order.
func (r *Repository) GetDonationsByDonor(ctx context.Context, nric string) ([]domain.Donation, error) {
	raws, err := r.loadDonations(ctx, "parent = ?", donorPath(nric))
	if err != nil {
		return nil, storeErr("list donor donations", err)
	}
	items, err := r.hydrateAll(ctx, raws)
	if err != nil {
		return nil, storeErr("list donor donations", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// GetAvailableDonationsByBloodType finds donors of the blood type, then reads
// each one's unconsumed donations. Oldest first, ties broken by id.
func (r *Repository) GetAvailableDonationsByBloodType(ctx context.Context, bloodType domain.BloodType) ([]domain.Donation, error) {
	parents, err := r.donorPathsByBloodType(ctx, bloodType)
	if err != nil {
		return nil, storeErr("list available donations", err)
	}

	var raws []rawDonation
	for _, parent := range parents {
		batch, err := r.loadDonations(ctx, "parent = ? AND "+availableClause, parent)
		if err != nil {
			return nil, storeErr("list available donations", err)
		}
		raws = append(raws, batch...)
	}

	items, err := r.hydrateAll(ctx, raws)
	if err != nil {
		return nil, storeErr("list available donations", err)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CollectedAt.Equal(items[j].CollectedAt) {
			return items[i].CollectedAt.Before(items[j].CollectedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *Repository) donorPathsByBloodType(ctx context.Context, bloodType domain.BloodType) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT path FROM documents WHERE collection = ? AND json_extract(data, '$.bloodType') = ?`,
		colDonors, string(bloodType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// InsertDonation adds a document under the donor. Missing donor, branch or
// staff documents are reported as not found, like foreign keys would.
func (r *Repository) InsertDonation(ctx context.Context, donation *domain.Donation) error {
	return r.inTx(ctx, func(tx *Repository) error {
		if exists, err := docExists(ctx, tx.q, donorPath(donation.DonorNRIC)); err != nil {
			return storeErr("insert donation", err)
		} else if !exists {
			return domain.NotFound("donor", donation.DonorNRIC)
		}
		if _, err := tx.GetBranchByID(ctx, donation.BranchID); err != nil {
			return err
		}
		if _, err := tx.GetStaffByID(ctx, donation.RecordedBy); err != nil {
			return err
		}

		id, err := nextID(ctx, tx.q, colDonations)
		if err != nil {
			return storeErr("insert donation", err)
		}
		doc := donationDoc{
			ID:          id,
			Quantity:    donation.Quantity,
			CollectedAt: donation.CollectedAt,
			BranchID:    donation.BranchID,
			RecordedBy:  donation.RecordedBy,
		}
		parent := donorPath(donation.DonorNRIC)
		if err := putDoc(ctx, tx.q, donationPath(donation.DonorNRIC, id), colDonations, strconv.FormatInt(id, 10), parent, doc); err != nil {
			return storeErr("insert donation", err)
		}
		donation.ID = id
		donation.UsedBy = nil
		return nil
	})
}

// MarkDonationUsed sets usedBy with a conditional update that only matches
// while usedBy is still null.
func (r *Repository) MarkDonationUsed(ctx context.Context, donationID, requestID int64) error {
	return r.inTx(ctx, func(tx *Repository) error {
		if exists, err := docExists(ctx, tx.q, idPath(colRequests, requestID)); err != nil {
			return storeErr("mark donation used", err)
		} else if !exists {
			return domain.NotFound("request", requestID)
		}
		return tx.claimDonation(ctx, donationID, requestID)
	})
}

func (r *Repository) claimDonation(ctx context.Context, donationID, requestID int64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE documents SET data = json_set(data, '$.usedBy', ?)
		WHERE collection = ? AND doc_id = ? AND `+availableClause,
		requestID, colDonations, strconv.FormatInt(donationID, 10))
	if err != nil {
		return storeErr("claim donation", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("claim donation", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetDonationByID(ctx, donationID); err != nil {
		return err
	}
	return &domain.AlreadyUsedError{DonationIDs: []int64{donationID}}
}
