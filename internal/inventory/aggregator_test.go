package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/adapter/docstore"
	"bloodbank/internal/adapter/repotest"
	"bloodbank/internal/domain"
)

func newAggregator(t *testing.T) (*Aggregator, domain.Repository) {
	t.Helper()
	repo, err := docstore.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, domain.LoadDefaultReference(context.Background(), repo))
	return New(repo, zerolog.Nop()), repo
}

func TestInventoryByBranchScenarioA(t *testing.T) {
	ctx := context.Background()
	agg, repo := newAggregator(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	repotest.MustDonation(t, repo, "S1234567A", 10001, 450, repotest.Base)

	inv, err := agg.InventoryByBranch(ctx, 10001)
	require.NoError(t, err)
	assert.EqualValues(t, 10001, inv.BranchID)
	require.Len(t, inv.Storage, 8)
	for _, bt := range domain.BloodTypes {
		want := int64(0)
		if bt == domain.BloodTypeONeg {
			want = 450
		}
		repotest.AssertQty(t, want, inv.Get(bt), bt)
	}

	_, err = agg.InventoryByBranch(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryByBranchAgreesWithRepository(t *testing.T) {
	ctx := context.Background()
	agg, repo := newAggregator(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	repotest.MustDonor(t, repo, "T0000000B", domain.BloodTypeABPos)
	used := repotest.MustDonation(t, repo, "S1234567A", 10001, 450, repotest.Base)
	repotest.MustDonation(t, repo, "S1234567A", 10001, 300, repotest.Base)
	repotest.MustDonation(t, repo, "T0000000B", 10001, 200, repotest.Base)
	repotest.MustDonation(t, repo, "T0000000B", 10002, 950, repotest.Base)
	req := repotest.MustRequest(t, repo, domain.BloodTypeONeg, 400)
	_, err := repo.FulfillRequest(ctx, req.ID, []int64{used.ID})
	require.NoError(t, err)

	for _, branch := range domain.DefaultBranches {
		derived, err := agg.InventoryByBranch(ctx, branch.ID)
		require.NoError(t, err)
		native, err := repo.GetBloodInventoryByBranchID(ctx, branch.ID)
		require.NoError(t, err)
		for _, bt := range domain.BloodTypes {
			assert.Truef(t, derived.Get(bt).Equal(native.Get(bt)), "branch %d %s", branch.ID, bt)
		}
	}

	total, err := agg.TotalAvailable(ctx)
	require.NoError(t, err)
	repotest.AssertQty(t, 1450, total)
}

func TestWeeklyStatsScenarioD(t *testing.T) {
	ctx := context.Background()
	agg, repo := newAggregator(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)

	sgt := time.FixedZone("SGT", 8*60*60)
	sunday := time.Date(2024, 3, 17, 23, 59, 0, 0, sgt)
	monday := time.Date(2024, 3, 18, 0, 0, 0, 0, sgt)
	repotest.MustDonation(t, repo, "S1234567A", 10001, 450, sunday)
	repotest.MustDonation(t, repo, "S1234567A", 10001, 300, monday)

	weekW, err := agg.WeeklyStats(ctx, time.Date(2024, 3, 13, 12, 0, 0, 0, sgt))
	require.NoError(t, err)
	assert.EqualValues(t, 1, weekW.DonationCount)
	repotest.AssertQty(t, 450, weekW.TotalQuantity)

	weekNext, err := agg.WeeklyStats(ctx, monday)
	require.NoError(t, err)
	assert.EqualValues(t, 1, weekNext.DonationCount)
	repotest.AssertQty(t, 300, weekNext.TotalQuantity)
}

func TestWeeklyStatsCountsConsumedDonations(t *testing.T) {
	ctx := context.Background()
	agg, repo := newAggregator(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	d := repotest.MustDonation(t, repo, "S1234567A", 10001, 450, repotest.Base)
	req := repotest.MustRequest(t, repo, domain.BloodTypeONeg, 400)
	require.NoError(t, repo.MarkDonationUsed(ctx, d.ID, req.ID))

	stats, err := agg.WeeklyStats(ctx, repotest.Base)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.DonationCount)

	total, err := agg.TotalAvailable(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestWeekBounds(t *testing.T) {
	cases := []struct {
		ref  time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 17, 23, 59, 59, 0, time.UTC), time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		start, end := WeekBounds(tc.ref)
		assert.True(t, start.Equal(tc.want), "ref %s: start %s", tc.ref, start)
		assert.True(t, end.Equal(tc.want.AddDate(0, 0, 7)), "ref %s: end %s", tc.ref, end)
		assert.Equal(t, time.Monday, start.Weekday())
	}
}
