// Package inventory derives stock levels from the donation ledger. Nothing
// here is persisted; every figure is recomputed on demand.
package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
)

// Aggregator computes inventory and weekly figures.
type Aggregator struct {
	repo   domain.Repository
	logger zerolog.Logger
}

func New(repo domain.Repository, logger zerolog.Logger) *Aggregator {
	return &Aggregator{repo: repo, logger: logger}
}

// InventoryByBranch totals the branch's available donations per blood type.
// All eight types are present, zero when nothing is in stock.
func (a *Aggregator) InventoryByBranch(ctx context.Context, branchID int64) (*domain.Inventory, error) {
	if _, err := a.repo.GetBranchByID(ctx, branchID); err != nil {
		return nil, err
	}
	donations, err := a.repo.GetAllDonations(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TallyInventory(branchID, donations), nil
}

// WeeklyStats counts every donation collected in the ISO week containing ref,
// consumed or not.
func (a *Aggregator) WeeklyStats(ctx context.Context, ref time.Time) (domain.WeeklyStats, error) {
	stats := domain.WeeklyStats{TotalQuantity: decimal.Zero}
	donations, err := a.repo.GetAllDonations(ctx)
	if err != nil {
		return stats, err
	}

	start, end := WeekBounds(ref)
	for _, d := range donations {
		if d.CollectedAt.Before(start) || !d.CollectedAt.Before(end) {
			continue
		}
		stats.DonationCount++
		stats.TotalQuantity = stats.TotalQuantity.Add(d.Quantity)
	}
	a.logger.Debug().
		Time("week_start", start).
		Int64("donations", stats.DonationCount).
		Msg("weekly stats computed")
	return stats, nil
}

// TotalAvailable sums every unconsumed donation across branches.
func (a *Aggregator) TotalAvailable(ctx context.Context) (decimal.Decimal, error) {
	donations, err := a.repo.GetAllDonations(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range donations {
		if d.Available() {
			total = total.Add(d.Quantity)
		}
	}
	return total, nil
}

// WeekBounds returns Monday 00:00 of ref's ISO week and the following Monday,
// both in ref's location. The interval is half-open.
func WeekBounds(ref time.Time) (time.Time, time.Time) {
	daysSinceMonday := (int(ref.Weekday()) + 6) % 7
	y, m, d := ref.Date()
	start := time.Date(y, m, d-daysSinceMonday, 0, 0, 0, 0, ref.Location())
	return start, start.AddDate(0, 0, 7)
}
