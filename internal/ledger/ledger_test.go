package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/adapter/docstore"
	"bloodbank/internal/adapter/repotest"
	"bloodbank/internal/domain"
)

func newLedger(t *testing.T) (*Ledger, domain.Repository) {
	t.Helper()
	repo, err := docstore.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, domain.LoadDefaultReference(context.Background(), repo))
	return New(repo, domain.FixedClock{T: repotest.Base}, zerolog.Nop()), repo
}

func params(nric string, qty int64) RecordParams {
	return RecordParams{
		DonorNRIC:  nric,
		Quantity:   decimal.NewFromInt(qty),
		BranchID:   10001,
		RecordedBy: 1,
	}
}

func TestRecordDefaultsCollectedAtToClock(t *testing.T) {
	l, repo := newLedger(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)

	d, err := l.Record(context.Background(), params(" s1234567a ", 450))
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
	assert.Nil(t, d.UsedBy)
	assert.Equal(t, "S1234567A", d.DonorNRIC)
	assert.True(t, d.CollectedAt.Equal(repotest.Base))
	assert.Equal(t, domain.BloodTypeONeg, d.BloodType)
	assert.Equal(t, "Bloodbank@HSA", d.BranchName)
	assert.Equal(t, "admin", d.RecordedByUsername)
}

func TestRecordKeepsExplicitCollectedAt(t *testing.T) {
	l, repo := newLedger(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)

	p := params("S1234567A", 450)
	p.CollectedAt = repotest.Base.Add(-72 * time.Hour)
	d, err := l.Record(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, d.CollectedAt.Equal(p.CollectedAt))
}

func TestRecordRejects(t *testing.T) {
	l, repo := newLedger(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)

	cases := []struct {
		name   string
		mutate func(*RecordParams)
		want   error
	}{
		{"zero quantity", func(p *RecordParams) { p.Quantity = decimal.Zero }, domain.ErrValidation},
		{"negative quantity", func(p *RecordParams) { p.Quantity = decimal.NewFromInt(-5) }, domain.ErrValidation},
		{"malformed nric", func(p *RecordParams) { p.DonorNRIC = "12345" }, domain.ErrValidation},
		{"missing branch", func(p *RecordParams) { p.BranchID = 0 }, domain.ErrValidation},
		{"unknown donor", func(p *RecordParams) { p.DonorNRIC = "T0000000B" }, domain.ErrNotFound},
		{"unknown branch", func(p *RecordParams) { p.BranchID = 99999 }, domain.ErrNotFound},
		{"unknown staff", func(p *RecordParams) { p.RecordedBy = 404 }, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := params("S1234567A", 450)
			tc.mutate(&p)
			_, err := l.Record(context.Background(), p)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	all, err := l.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestByDonor(t *testing.T) {
	ctx := context.Background()
	l, repo := newLedger(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	repotest.MustDonor(t, repo, "T0000000B", domain.BloodTypeAPos)
	first, err := l.Record(ctx, params("S1234567A", 450))
	require.NoError(t, err)
	_, err = l.Record(ctx, params("T0000000B", 300))
	require.NoError(t, err)
	second, err := l.Record(ctx, params("S1234567A", 250))
	require.NoError(t, err)

	got, err := l.ByDonor(ctx, "s1234567a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	_, err = l.ByDonor(ctx, "S7654321Z")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAvailableValidatesBloodType(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.Available(context.Background(), "C+")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := l.Available(context.Background(), " o- ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarkUsedIsOneWay(t *testing.T) {
	ctx := context.Background()
	l, repo := newLedger(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	d, err := l.Record(ctx, params("S1234567A", 450))
	require.NoError(t, err)
	req := repotest.MustRequest(t, repo, domain.BloodTypeONeg, 400)

	require.NoError(t, l.MarkUsed(ctx, d.ID, req.ID))
	assert.ErrorIs(t, l.MarkUsed(ctx, d.ID, req.ID), domain.ErrAlreadyUsed)

	avail, err := l.Available(ctx, "O-")
	require.NoError(t, err)
	assert.Empty(t, avail)

	assert.ErrorIs(t, l.MarkUsed(ctx, 0, req.ID), domain.ErrValidation)
	assert.ErrorIs(t, l.MarkUsed(ctx, 987654, req.ID), domain.ErrNotFound)
}
