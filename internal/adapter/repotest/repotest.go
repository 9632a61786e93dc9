// Package repotest holds the behaviour every domain.Repository must share.
// Each backend runs the same suite so that relational and document layouts
// stay observably identical.
package repotest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/domain"
)

// Store is what the suite needs: the repository plus reference loading.
type Store interface {
	domain.Repository
	domain.ReferenceLoader
}

// Opener returns an empty store. The suite loads reference data itself.
type Opener func(t *testing.T) Store

// Base is the reference instant used by fixtures: Wednesday 2024-03-13 10:00 UTC.
var Base = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

// Run executes the whole contract against stores produced by open.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s Store)
	}{
		{"DonorRoundTrip", testDonorRoundTrip},
		{"DuplicateDonor", testDuplicateDonor},
		{"UpdateDonor", testUpdateDonor},
		{"DeleteDonor", testDeleteDonor},
		{"InsertDonationUnknownReferences", testInsertDonationUnknownReferences},
		{"InventoryScenarioA", testInventoryScenarioA},
		{"FulfillScenarioB", testFulfillScenarioB},
		{"FulfillIsAtomic", testFulfillIsAtomic},
		{"FulfillMissingDonation", testFulfillMissingDonation},
		{"FulfillTwice", testFulfillTwice},
		{"ConcurrentFulfillScenarioC", testConcurrentFulfill},
		{"MarkDonationUsed", testMarkDonationUsed},
		{"DonorNormalization", testDonorNormalization},
		{"DonationOrdering", testDonationOrdering},
		{"AvailableByBloodType", testAvailableByBloodType},
		{"InventoryMatchesLedger", testInventoryMatchesLedger},
		{"DashboardStats", testDashboardStats},
		{"UnitOfWorkRollsBack", testUnitOfWorkRollsBack},
		{"BloodTypeID", testBloodTypeID},
		{"Branches", testBranches},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, domain.LoadDefaultReference(context.Background(), s))
			tc.fn(t, s)
		})
	}
}

// Donor returns a valid donor fixture.
func Donor(nric string, bt domain.BloodType) *domain.Donor {
	return &domain.Donor{
		NRIC:             nric,
		Name:             "Tan Ah Kow",
		DateOfBirth:      time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		ContactNo:        "91234567",
		BloodType:        bt,
		RegistrationDate: Base.Add(-30 * 24 * time.Hour),
	}
}

// MustDonor inserts a donor fixture.
func MustDonor(t *testing.T, repo domain.Repository, nric string, bt domain.BloodType) *domain.Donor {
	t.Helper()
	d := Donor(nric, bt)
	require.NoError(t, repo.InsertDonor(context.Background(), d))
	return d
}

// MustDonation records qty millilitres for nric at branchID.
func MustDonation(t *testing.T, repo domain.Repository, nric string, branchID int64, qty int64, at time.Time) *domain.Donation {
	t.Helper()
	d := &domain.Donation{
		DonorNRIC:   nric,
		Quantity:    decimal.NewFromInt(qty),
		CollectedAt: at,
		BranchID:    branchID,
		RecordedBy:  domain.DefaultStaff[0].ID,
	}
	require.NoError(t, repo.InsertDonation(context.Background(), d))
	require.NotZero(t, d.ID)
	return d
}

// MustRequest raises a pending request.
func MustRequest(t *testing.T, repo domain.Repository, bt domain.BloodType, qty int64) *domain.BloodRequest {
	t.Helper()
	r := &domain.BloodRequest{
		RequesterID: domain.DefaultStaff[0].ID,
		BloodType:   bt,
		Quantity:    decimal.NewFromInt(qty),
		RequestedAt: Base,
		Address:     "Ward 12, Singapore General Hospital",
	}
	require.NoError(t, repo.InsertRequest(context.Background(), r))
	require.NotZero(t, r.ID)
	return r
}

// AssertQty compares decimals by value.
func AssertQty(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, decimal.NewFromInt(want).Equal(got), "want %d got %s %v", want, got, msgAndArgs)
}

func testDonorRoundTrip(t *testing.T, s Store) {
	ctx := context.Background()
	in := MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)

	got, err := s.GetDonorByNRIC(ctx, "S1234567A")
	require.NoError(t, err)
	assert.Equal(t, in.NRIC, got.NRIC)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.ContactNo, got.ContactNo)
	assert.Equal(t, in.BloodType, got.BloodType)
	assert.True(t, in.DateOfBirth.Equal(got.DateOfBirth), "dateOfBirth %s vs %s", in.DateOfBirth, got.DateOfBirth)
	assert.True(t, in.RegistrationDate.Equal(got.RegistrationDate), "registrationDate %s vs %s", in.RegistrationDate, got.RegistrationDate)

	_, err = s.GetDonorByNRIC(ctx, "S0000000Z")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := s.GetAllDonors(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "S1234567A", all[0].NRIC)
}

func testDuplicateDonor(t *testing.T, s Store) {
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	err := s.InsertDonor(context.Background(), Donor("S1234567A", domain.BloodTypeAPos))
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func testUpdateDonor(t *testing.T, s Store) {
	ctx := context.Background()
	d := MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)

	d.Name = "Tan Ah Beng"
	d.ContactNo = "98765432"
	d.BloodType = domain.BloodTypeABPos
	require.NoError(t, s.UpdateDonor(ctx, d))

	got, err := s.GetDonorByNRIC(ctx, d.NRIC)
	require.NoError(t, err)
	assert.Equal(t, "Tan Ah Beng", got.Name)
	assert.Equal(t, "98765432", got.ContactNo)
	assert.Equal(t, domain.BloodTypeABPos, got.BloodType)

	err = s.UpdateDonor(ctx, Donor("T0000000B", domain.BloodTypeAPos))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteDonor(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	MustDonor(t, s, "T0001111B", domain.BloodTypeAPos)
	MustDonation(t, s, "S1234567A", 10001, 450, Base)

	err := s.DeleteDonorByNRIC(ctx, "S1234567A")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, s.DeleteDonorByNRIC(ctx, "T0001111B"))
	_, err = s.GetDonorByNRIC(ctx, "T0001111B")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.DeleteDonorByNRIC(ctx, "T0001111B")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testInsertDonationUnknownReferences(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)

	cases := map[string]*domain.Donation{
		"unknown donor":  {DonorNRIC: "S7654321Z", Quantity: decimal.NewFromInt(450), CollectedAt: Base, BranchID: 10001, RecordedBy: 1},
		"unknown branch": {DonorNRIC: "S1234567A", Quantity: decimal.NewFromInt(450), CollectedAt: Base, BranchID: 99999, RecordedBy: 1},
		"unknown staff":  {DonorNRIC: "S1234567A", Quantity: decimal.NewFromInt(450), CollectedAt: Base, BranchID: 10001, RecordedBy: 404},
	}
	for name, d := range cases {
		err := s.InsertDonation(ctx, d)
		assert.ErrorIs(t, err, domain.ErrNotFound, name)
	}

	all, err := s.GetAllDonations(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testInventoryScenarioA(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	MustDonation(t, s, "S1234567A", 10001, 450, Base)

	inv, err := s.GetBloodInventoryByBranchID(ctx, 10001)
	require.NoError(t, err)
	require.Len(t, inv.Storage, len(domain.BloodTypes))
	for _, bt := range domain.BloodTypes {
		want := int64(0)
		if bt == domain.BloodTypeONeg {
			want = 450
		}
		AssertQty(t, want, inv.Get(bt), bt)
	}

	empty, err := s.GetBloodInventoryByBranchID(ctx, 10002)
	require.NoError(t, err)
	require.Len(t, empty.Storage, len(domain.BloodTypes))
	AssertQty(t, 0, empty.Total())

	_, err = s.GetBloodInventoryByBranchID(ctx, 424242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testFulfillScenarioB(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	donation := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	req := MustRequest(t, s, domain.BloodTypeONeg, 400)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.False(t, req.Fulfilled)

	updated, err := s.FulfillRequest(ctx, req.ID, []int64{donation.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusDelivered, updated.Status)
	assert.True(t, updated.Fulfilled)

	inv, err := s.GetBloodInventoryByBranchID(ctx, 10001)
	require.NoError(t, err)
	AssertQty(t, 0, inv.Get(domain.BloodTypeONeg))

	got, err := s.GetDonationByID(ctx, donation.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UsedBy)
	assert.Equal(t, req.ID, *got.UsedBy)

	stored, err := s.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusDelivered, stored.Status)
	assert.True(t, stored.Fulfilled)
}

func testFulfillIsAtomic(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	d1 := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	d2 := MustDonation(t, s, "S1234567A", 10001, 300, Base.Add(time.Hour))
	first := MustRequest(t, s, domain.BloodTypeONeg, 400)
	second := MustRequest(t, s, domain.BloodTypeONeg, 700)

	_, err := s.FulfillRequest(ctx, first.ID, []int64{d1.ID})
	require.NoError(t, err)

	_, err = s.FulfillRequest(ctx, second.ID, []int64{d1.ID, d2.ID})
	require.ErrorIs(t, err, domain.ErrAlreadyUsed)
	var used *domain.AlreadyUsedError
	require.True(t, errors.As(err, &used))
	assert.Equal(t, []int64{d1.ID}, used.DonationIDs)

	got, err := s.GetDonationByID(ctx, d2.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UsedBy, "d2 must stay available")

	req, err := s.GetRequestByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.False(t, req.Fulfilled)

	again, err := s.GetDonationByID(ctx, d1.ID)
	require.NoError(t, err)
	require.NotNil(t, again.UsedBy)
	assert.Equal(t, first.ID, *again.UsedBy)
}

func testFulfillMissingDonation(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	d1 := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	req := MustRequest(t, s, domain.BloodTypeONeg, 400)

	_, err := s.FulfillRequest(ctx, req.ID, []int64{d1.ID, 987654})
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.GetDonationByID(ctx, d1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UsedBy)

	_, err = s.FulfillRequest(ctx, 987654, []int64{d1.ID})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.FulfillRequest(ctx, req.ID, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func testFulfillTwice(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	d1 := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	d2 := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	req := MustRequest(t, s, domain.BloodTypeONeg, 400)

	_, err := s.FulfillRequest(ctx, req.ID, []int64{d1.ID})
	require.NoError(t, err)

	_, err = s.FulfillRequest(ctx, req.ID, []int64{d2.ID})
	require.ErrorIs(t, err, domain.ErrAlreadyFulfilled)

	got, err := s.GetDonationByID(ctx, d2.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UsedBy)
}

func testConcurrentFulfill(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	donation := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	reqs := []*domain.BloodRequest{
		MustRequest(t, s, domain.BloodTypeONeg, 400),
		MustRequest(t, s, domain.BloodTypeONeg, 400),
	}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, len(reqs))
	)
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			<-start
			_, errs[i] = s.FulfillRequest(ctx, id, []int64{donation.ID})
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
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, used)

	got, err := s.GetDonationByID(ctx, donation.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UsedBy)
	assert.Contains(t, []int64{reqs[0].ID, reqs[1].ID}, *got.UsedBy)
}

func testMarkDonationUsed(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	d := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	first := MustRequest(t, s, domain.BloodTypeONeg, 400)
	second := MustRequest(t, s, domain.BloodTypeONeg, 400)

	require.NoError(t, s.MarkDonationUsed(ctx, d.ID, first.ID))

	err := s.MarkDonationUsed(ctx, d.ID, first.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyUsed)
	err = s.MarkDonationUsed(ctx, d.ID, second.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyUsed)

	// An unknown request is reported before the donation's state.
	err = s.MarkDonationUsed(ctx, d.ID, second.ID+1000)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "request", nf.Entity)

	got, err := s.GetDonationByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UsedBy)
	assert.Equal(t, first.ID, *got.UsedBy)

	err = s.MarkDonationUsed(ctx, 987654, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	other := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	err = s.MarkDonationUsed(ctx, other.ID, 987654)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDonationOrdering(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	MustDonor(t, s, "T0000000B", domain.BloodTypeAPos)
	oldest := MustDonation(t, s, "S1234567A", 10001, 200, Base.Add(-48*time.Hour))
	tieA := MustDonation(t, s, "T0000000B", 10002, 300, Base)
	tieB := MustDonation(t, s, "S1234567A", 10003, 400, Base)
	newest := MustDonation(t, s, "T0000000B", 10001, 500, Base.Add(2*time.Hour))

	all, err := s.GetAllDonations(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(all))
	for _, d := range all {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []int64{newest.ID, tieA.ID, tieB.ID, oldest.ID}, ids)

	byDonor, err := s.GetDonationsByDonor(ctx, "S1234567A")
	require.NoError(t, err)
	require.Len(t, byDonor, 2)
	assert.Equal(t, oldest.ID, byDonor[0].ID)
	assert.Equal(t, tieB.ID, byDonor[1].ID)
	for _, d := range byDonor {
		assert.Equal(t, "S1234567A", d.DonorNRIC)
		assert.Equal(t, domain.BloodTypeONeg, d.BloodType)
	}
}

func testAvailableByBloodType(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	MustDonor(t, s, "S8880000C", domain.BloodTypeONeg)
	MustDonor(t, s, "T0000000B", domain.BloodTypeAPos)
	a := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	b := MustDonation(t, s, "S8880000C", 10002, 350, Base.Add(-time.Hour))
	consumed := MustDonation(t, s, "S1234567A", 10001, 250, Base)
	MustDonation(t, s, "T0000000B", 10001, 500, Base)
	req := MustRequest(t, s, domain.BloodTypeONeg, 250)
	_, err := s.FulfillRequest(ctx, req.ID, []int64{consumed.ID})
	require.NoError(t, err)

	avail, err := s.GetAvailableDonationsByBloodType(ctx, domain.BloodTypeONeg)
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.Equal(t, b.ID, avail[0].ID)
	assert.Equal(t, a.ID, avail[1].ID)
	for _, d := range avail {
		assert.Nil(t, d.UsedBy)
		assert.Equal(t, domain.BloodTypeONeg, d.BloodType)
		assert.Equal(t, domain.DefaultStaff[0].Username, d.RecordedByUsername)
	}
	assert.Equal(t, "Bloodbank@Dhoby Ghaut", avail[0].BranchName)
	assert.Equal(t, "Bloodbank@HSA", avail[1].BranchName)

	none, err := s.GetAvailableDonationsByBloodType(ctx, domain.BloodTypeBNeg)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testInventoryMatchesLedger(t *testing.T, s Store) {
	ctx := context.Background()
	donors := map[string]domain.BloodType{
		"S9990000A": domain.BloodTypeAPos,
		"S9991111A": domain.BloodTypeANeg,
		"T0000000B": domain.BloodTypeBPos,
		"T0001111B": domain.BloodTypeBNeg,
		"S8880000C": domain.BloodTypeABPos,
		"S8881111C": domain.BloodTypeABNeg,
		"S7770000D": domain.BloodTypeOPos,
		"S7771111D": domain.BloodTypeONeg,
	}
	nrics := make([]string, 0, len(donors))
	for _, b := range domain.BloodTypes {
		for nric, bt := range donors {
			if bt == b {
				MustDonor(t, s, nric, bt)
				nrics = append(nrics, nric)
			}
		}
	}

	var ledger []*domain.Donation
	for i := 0; i < 40; i++ {
		nric := nrics[(i*5)%len(nrics)]
		branch := domain.DefaultBranches[i%len(domain.DefaultBranches)].ID
		ledger = append(ledger, MustDonation(t, s, nric, branch, int64(200+50*(i%16)), Base.Add(time.Duration(i)*time.Hour)))
	}
	req := MustRequest(t, s, domain.BloodTypeAPos, 1000)
	_, err := s.FulfillRequest(ctx, req.ID, []int64{ledger[0].ID, ledger[7].ID, ledger[13].ID})
	require.NoError(t, err)

	all, err := s.GetAllDonations(ctx)
	require.NoError(t, err)
	for _, branch := range domain.DefaultBranches {
		inv, err := s.GetBloodInventoryByBranchID(ctx, branch.ID)
		require.NoError(t, err)
		for _, bt := range domain.BloodTypes {
			want := decimal.Zero
			for _, d := range all {
				if d.BranchID == branch.ID && d.BloodType == bt && d.UsedBy == nil {
					want = want.Add(d.Quantity)
				}
			}
			assert.Truef(t, want.Equal(inv.Get(bt)), "branch %d %s: want %s got %s", branch.ID, bt, want, inv.Get(bt))
		}
	}

	claimed := map[int64]int64{}
	for _, d := range all {
		if d.UsedBy == nil {
			continue
		}
		if prev, ok := claimed[d.ID]; ok {
			t.Fatalf("donation %d claimed by %d and %d", d.ID, prev, *d.UsedBy)
		}
		claimed[d.ID] = *d.UsedBy
	}
	assert.Len(t, claimed, 3)
}

func testDashboardStats(t *testing.T, s Store) {
	ctx := context.Background()
	MustDonor(t, s, "S1234567A", domain.BloodTypeONeg)
	MustDonor(t, s, "T0000000B", domain.BloodTypeAPos)
	d1 := MustDonation(t, s, "S1234567A", 10001, 450, Base)
	MustDonation(t, s, "T0000000B", 10002, 300, Base)
	MustDonation(t, s, "T0000000B", 10001, 250, Base)
	r1 := MustRequest(t, s, domain.BloodTypeONeg, 400)
	MustRequest(t, s, domain.BloodTypeAPos, 200)
	_, err := s.FulfillRequest(ctx, r1.ID, []int64{d1.ID})
	require.NoError(t, err)

	stats, err := s.GetDashboardStats(ctx, 10001)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.DonorCount)
	AssertQty(t, 550, stats.AvailableBlood)
	assert.EqualValues(t, 1, stats.PendingRequests)
	require.NotNil(t, stats.Inventory)
	assert.EqualValues(t, 10001, stats.Inventory.BranchID)
	AssertQty(t, 250, stats.Inventory.Get(domain.BloodTypeAPos))
	AssertQty(t, 0, stats.Inventory.Get(domain.BloodTypeONeg))
}

func testUnitOfWorkRollsBack(t *testing.T, s Store) {
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.Do(ctx, func(tx domain.Repository) error {
		if err := tx.InsertDonor(ctx, Donor("S1234567A", domain.BloodTypeONeg)); err != nil {
			return err
		}
		return tx.Do(ctx, func(inner domain.Repository) error {
			if err := inner.InsertDonor(ctx, Donor("T0000000B", domain.BloodTypeAPos)); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	all, err := s.GetAllDonors(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.Do(ctx, func(tx domain.Repository) error {
		return tx.InsertDonor(ctx, Donor("S1234567A", domain.BloodTypeONeg))
	}))
	_, err = s.GetDonorByNRIC(ctx, "S1234567A")
	require.NoError(t, err)
}

func testBloodTypeID(t *testing.T, s Store) {
	ctx := context.Background()
	for i, bt := range domain.BloodTypes {
		id, err := s.GetBloodTypeID(ctx, bt)
		require.NoError(t, err)
		assert.Equal(t, i+1, id)
	}
	_, err := s.GetBloodTypeID(ctx, domain.BloodType("C+"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testBranches(t *testing.T, s Store) {
	ctx := context.Background()
	branches, err := s.GetAllBranches(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBranches, branches)

	b, err := s.GetBranchByID(ctx, 10003)
	require.NoError(t, err)
	assert.Equal(t, "Bloodbank@Westgate", b.Name)

	staff, err := s.GetStaffByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", staff.Username)

	_, err = s.GetStaffByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDonorNormalization(t *testing.T, s Store) {
	ctx := context.Background()
	sgt := time.FixedZone("SGT", 8*3600)
	in := Donor(" s7654321d ", domain.BloodTypeAPos)
	in.Name = "  van der   Berg "
	in.DateOfBirth = time.Date(1990, time.May, 17, 23, 30, 0, 0, sgt)
	require.NoError(t, s.InsertDonor(ctx, in))

	got, err := s.GetDonorByNRIC(ctx, "S7654321D")
	require.NoError(t, err)
	assert.Equal(t, "van der Berg", got.Name)
	assert.Equal(t, "1990-05-17", got.DateOfBirth.Format(time.DateOnly))
	assert.True(t, got.DateOfBirth.Equal(time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC)), got.DateOfBirth)

	got.DateOfBirth = time.Date(1991, time.June, 2, 8, 0, 0, 0, sgt)
	require.NoError(t, s.UpdateDonor(ctx, got))
	updated, err := s.GetDonorByNRIC(ctx, "S7654321D")
	require.NoError(t, err)
	assert.True(t, updated.DateOfBirth.Equal(time.Date(1991, time.June, 2, 0, 0, 0, 0, time.UTC)), updated.DateOfBirth)
}
