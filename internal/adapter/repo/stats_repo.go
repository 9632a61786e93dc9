package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
	"bloodbank/internal/sqlinline"
)

// GetDashboardStats answers donor count, available blood and pending
// requests in one query, then attaches the branch inventory.
func (r *RepositoryPG) GetDashboardStats(ctx context.Context, branchID int64) (*domain.DashboardStats, error) {
	var (
		stats     domain.DashboardStats
		available string
	)
	row := r.sql.QueryRow(ctx, sqlinline.QDashboardStats)
	if err := row.Scan(&stats.DonorCount, &available, &stats.PendingRequests); err != nil {
		return nil, storeErr("dashboard stats", err)
	}
	qty, err := decimal.NewFromString(available)
	if err != nil {
		return nil, storeErr("dashboard stats", fmt.Errorf("parse available %q: %w", available, err))
	}
	stats.AvailableBlood = qty

	inv, err := r.GetBloodInventoryByBranchID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	stats.Inventory = inv
	return &stats, nil
}

// GetBloodInventoryByBranchID groups available donations by donor blood
// type. Types without rows keep their zero cell.
func (r *RepositoryPG) GetBloodInventoryByBranchID(ctx context.Context, branchID int64) (*domain.Inventory, error) {
	if _, err := r.GetBranchByID(ctx, branchID); err != nil {
		return nil, err
	}

	rows, err := r.sql.Query(ctx, sqlinline.QInventoryByBranch, branchID)
	if err != nil {
		return nil, storeErr("inventory by branch", err)
	}
	defer rows.Close()

	inv := domain.NewInventory(branchID)
	for rows.Next() {
		var bloodType, total string
		if err := rows.Scan(&bloodType, &total); err != nil {
			return nil, storeErr("inventory by branch", err)
		}
		qty, err := decimal.NewFromString(total)
		if err != nil {
			return nil, storeErr("inventory by branch", fmt.Errorf("parse total %q: %w", total, err))
		}
		inv.Add(domain.BloodType(bloodType), qty)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("inventory by branch", err)
	}
	return inv, nil
}
