// Package dashboard assembles the read-only summary shown to staff.
package dashboard

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bloodbank/internal/domain"
	"bloodbank/internal/inventory"
)

// Snapshot is the dashboard payload for one branch.
type Snapshot struct {
	BranchID          int64             `json:"branchId"`
	DonorCount        int64             `json:"donorCount"`
	AvailableBlood    decimal.Decimal   `json:"availableBlood"`
	PendingRequests   int64             `json:"pendingRequests"`
	DonationsThisWeek int64             `json:"donationsThisWeek"`
	BloodQtyThisWeek  decimal.Decimal   `json:"bloodQtyThisWeek"`
	Inventory         *domain.Inventory `json:"inventory"`
}

type Reporter struct {
	repo       domain.Repository
	aggregator *inventory.Aggregator
	clock      domain.Clock
	logger     zerolog.Logger
}

func New(repo domain.Repository, aggregator *inventory.Aggregator, clock domain.Clock, logger zerolog.Logger) *Reporter {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Reporter{repo: repo, aggregator: aggregator, clock: clock, logger: logger}
}

// Snapshot reads store-level counters and this week's figures concurrently.
func (r *Reporter) Snapshot(ctx context.Context, branchID int64) (*Snapshot, error) {
	var (
		stats  *domain.DashboardStats
		weekly domain.WeeklyStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = r.repo.GetDashboardStats(gctx, branchID)
		return err
	})
	g.Go(func() error {
		var err error
		weekly, err = r.aggregator.WeeklyStats(gctx, r.clock.Now())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug().Int64("branch_id", branchID).Msg("dashboard snapshot built")
	return &Snapshot{
		BranchID:          branchID,
		DonorCount:        stats.DonorCount,
		AvailableBlood:    stats.AvailableBlood,
		PendingRequests:   stats.PendingRequests,
		DonationsThisWeek: weekly.DonationCount,
		BloodQtyThisWeek:  weekly.TotalQuantity,
		Inventory:         stats.Inventory,
	}, nil
}
