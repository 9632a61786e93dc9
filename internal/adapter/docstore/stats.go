package docstore

import (
	"context"

	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
)

func (r *Repository) GetDashboardStats(ctx context.Context, branchID int64) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, colDonors,
	).Scan(&stats.DonorCount); err != nil {
		return nil, storeErr("dashboard stats", err)
	}
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ? AND json_extract(data, '$.fulfilled') = 0`, colRequests,
	).Scan(&stats.PendingRequests); err != nil {
		return nil, storeErr("dashboard stats", err)
	}

	raws, err := r.loadDonations(ctx, availableClause)
	if err != nil {
		return nil, storeErr("dashboard stats", err)
	}
	stats.AvailableBlood = decimal.Zero
	for _, raw := range raws {
		stats.AvailableBlood = stats.AvailableBlood.Add(raw.doc.Quantity)
	}

	inv, err := r.GetBloodInventoryByBranchID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	stats.Inventory = inv
	return &stats, nil
}

// GetBloodInventoryByBranchID reads the branch's available donations and
// resolves each one's blood type through its parent donor document.
func (r *Repository) GetBloodInventoryByBranchID(ctx context.Context, branchID int64) (*domain.Inventory, error) {
	if _, err := r.GetBranchByID(ctx, branchID); err != nil {
		return nil, err
	}
	raws, err := r.loadDonations(ctx, "json_extract(data, '$.branchId') = ? AND "+availableClause, branchID)
	if err != nil {
		return nil, storeErr("inventory by branch", err)
	}

	rs := r.newResolver()
	donations := make([]domain.Donation, 0, len(raws))
	for _, raw := range raws {
		donor, err := rs.donor(ctx, raw.parent)
		if err != nil {
			return nil, storeErr("inventory by branch", err)
		}
		donations = append(donations, domain.Donation{
			ID:        raw.doc.ID,
			Quantity:  raw.doc.Quantity,
			BranchID:  raw.doc.BranchID,
			UsedBy:    raw.doc.UsedBy,
			BloodType: donor.BloodType,
		})
	}
	return domain.TallyInventory(branchID, donations), nil
}
