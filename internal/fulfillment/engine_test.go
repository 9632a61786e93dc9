package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/adapter/docstore"
	"bloodbank/internal/adapter/repotest"
	"bloodbank/internal/domain"
	"bloodbank/internal/events"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.RequestFulfilled
	err    error
}

func (p *capturePublisher) PublishRequestFulfilled(_ context.Context, e events.RequestFulfilled) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func newEngine(t *testing.T) (*Engine, domain.Repository, *capturePublisher) {
	t.Helper()
	repo, err := docstore.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, domain.LoadDefaultReference(context.Background(), repo))
	pub := &capturePublisher{}
	return New(repo, pub, domain.FixedClock{T: repotest.Base}, zerolog.Nop()), repo, pub
}

func newRequest(t *testing.T, e *Engine, qty int64) *domain.BloodRequest {
	t.Helper()
	req, err := e.CreateRequest(context.Background(), NewRequest{
		RequesterID: 1,
		BloodType:   "o-",
		Quantity:    decimal.NewFromInt(qty),
		Address:     " Ward 12 ",
	})
	require.NoError(t, err)
	return req
}

func TestCreateRequest(t *testing.T) {
	e, _, _ := newEngine(t)
	req := newRequest(t, e, 400)

	assert.NotZero(t, req.ID)
	assert.Equal(t, domain.BloodTypeONeg, req.BloodType)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.False(t, req.Fulfilled)
	assert.Equal(t, "Ward 12", req.Address)
	assert.Equal(t, "admin", req.RequesterUsername)
	assert.True(t, req.RequestedAt.Equal(repotest.Base))

	listed, err := e.Requests(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, req.ID, listed[0].ID)
}

func TestCreateRequestRejects(t *testing.T) {
	e, _, _ := newEngine(t)
	valid := NewRequest{RequesterID: 1, BloodType: "A+", Quantity: decimal.NewFromInt(100), Address: "Ward 1"}

	cases := []struct {
		name   string
		mutate func(*NewRequest)
		want   error
	}{
		{"blood type", func(r *NewRequest) { r.BloodType = "Z" }, domain.ErrValidation},
		{"quantity", func(r *NewRequest) { r.Quantity = decimal.Zero }, domain.ErrValidation},
		{"address", func(r *NewRequest) { r.Address = "  " }, domain.ErrValidation},
		{"requester missing", func(r *NewRequest) { r.RequesterID = 0 }, domain.ErrValidation},
		{"requester unknown", func(r *NewRequest) { r.RequesterID = 404 }, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := e.CreateRequest(context.Background(), in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFulfillScenarioB(t *testing.T) {
	ctx := context.Background()
	e, repo, pub := newEngine(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	d := repotest.MustDonation(t, repo, "S1234567A", 10001, 450, repotest.Base)
	req := newRequest(t, e, 400)

	res, err := e.Fulfill(ctx, req.ID, []int64{d.ID, d.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{d.ID}, res.ConsumedDonationIDs)
	assert.Equal(t, domain.RequestStatusDelivered, res.Request.Status)
	assert.True(t, res.Request.Fulfilled)
	repotest.AssertQty(t, 450, res.AllocatedQuantity)
	repotest.AssertQty(t, 0, res.Shortfall)

	inv, err := repo.GetBloodInventoryByBranchID(ctx, 10001)
	require.NoError(t, err)
	repotest.AssertQty(t, 0, inv.Get(domain.BloodTypeONeg))

	require.Len(t, pub.events, 1)
	assert.Equal(t, req.ID, pub.events[0].RequestID)
	assert.Equal(t, []int64{d.ID}, pub.events[0].DonationIDs)
	assert.True(t, pub.events[0].FulfilledAt.Equal(repotest.Base))
}

func TestFulfillReportsShortfall(t *testing.T) {
	e, repo, _ := newEngine(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	d := repotest.MustDonation(t, repo, "S1234567A", 10001, 200, repotest.Base)
	req := newRequest(t, e, 400)

	res, err := e.Fulfill(context.Background(), req.ID, []int64{d.ID})
	require.NoError(t, err)
	repotest.AssertQty(t, 200, res.AllocatedQuantity)
	repotest.AssertQty(t, 200, res.Shortfall)
	assert.True(t, res.Request.Fulfilled)
}

func TestFulfillRejectsEmptySet(t *testing.T) {
	e, _, pub := newEngine(t)
	req := newRequest(t, e, 400)

	_, err := e.Fulfill(context.Background(), req.ID, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.Fulfill(context.Background(), req.ID, []int64{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, pub.events)
}

func TestFulfillFailureLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	e, repo, pub := newEngine(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	d1 := repotest.MustDonation(t, repo, "S1234567A", 10001, 450, repotest.Base)
	d2 := repotest.MustDonation(t, repo, "S1234567A", 10001, 300, repotest.Base)
	first := newRequest(t, e, 400)
	second := newRequest(t, e, 700)

	_, err := e.Fulfill(ctx, first.ID, []int64{d1.ID})
	require.NoError(t, err)

	_, err = e.Fulfill(ctx, second.ID, []int64{d1.ID, d2.ID})
	var used *domain.AlreadyUsedError
	require.True(t, errors.As(err, &used), "got %v", err)
	assert.Equal(t, []int64{d1.ID}, used.DonationIDs)

	got, err := repo.GetDonationByID(ctx, d2.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UsedBy)
	pending, err := e.Request(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, pending.Fulfilled)
	assert.Len(t, pub.events, 1)

	_, err = e.Fulfill(ctx, first.ID, []int64{d2.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyFulfilled)
	_, err = e.Fulfill(ctx, 987654, []int64{d2.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFulfillScenarioCConcurrent(t *testing.T) {
	ctx := context.Background()
	e, repo, pub := newEngine(t)
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	d := repotest.MustDonation(t, repo, "S1234567A", 10001, 450, repotest.Base)
	reqs := []*domain.BloodRequest{newRequest(t, e, 400), newRequest(t, e, 400)}

	var wg sync.WaitGroup
	errs := make([]error, len(reqs))
	start := make(chan struct{})
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			<-start
			_, errs[i] = e.Fulfill(ctx, id, []int64{d.ID})
		}(i, req.ID)
	}
	close(start)
	wg.Wait()

	var ok, used int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyUsed):
			used++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, used)
	assert.Len(t, pub.events, 1)
}

func TestFulfillSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	e, repo, pub := newEngine(t)
	pub.err = errors.New("broker down")
	repotest.MustDonor(t, repo, "S1234567A", domain.BloodTypeONeg)
	d := repotest.MustDonation(t, repo, "S1234567A", 10001, 450, repotest.Base)
	req := newRequest(t, e, 400)

	res, err := e.Fulfill(ctx, req.ID, []int64{d.ID})
	require.NoError(t, err)
	assert.True(t, res.Request.Fulfilled)

	stored, err := e.Request(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, stored.Fulfilled)
}
