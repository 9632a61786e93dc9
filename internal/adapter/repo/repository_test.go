package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"bloodbank/internal/domain"
	"bloodbank/internal/sqlinline"
)

func requestRow(id int64, fulfilled bool) []any {
	status := "Pending"
	if fulfilled {
		status = "Delivered"
	}
	return []any{
		id, int64(1), "O-", "400",
		time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC),
		"Ward 12", status, fulfilled, "admin",
	}
}

func donationRow(id int64, usedBy *int64) []any {
	return []any{
		id, "S1234567A", "450", time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC),
		int64(10001), int64(1), usedBy, "O-", "Bloodbank@HSA", "admin",
	}
}

func TestFulfillRequestMarksDonationsAndRequest(t *testing.T) {
	sql := newScriptedSQL()
	sql.rows[sqlinline.QLockRequest] = [][]any{{false}}
	sql.rows[sqlinline.QLockDonations] = [][]any{{int64(3), (*int64)(nil)}, {int64(5), (*int64)(nil)}}
	sql.tags[sqlinline.QMarkDonationsUsed] = 2
	sql.tags[sqlinline.QMarkRequestDelivered] = 1
	sql.rows[sqlinline.QSelectRequestByID] = [][]any{requestRow(7, true)}

	repo := NewRepository(sql, zerolog.Nop())
	req, err := repo.FulfillRequest(context.Background(), 7, []int64{5, 3, 5})
	if err != nil {
		t.Fatalf("FulfillRequest returned error: %v", err)
	}
	if req.Status != domain.RequestStatusDelivered || !req.Fulfilled {
		t.Fatalf("request not delivered: %+v", req)
	}
	if sql.txs != 1 {
		t.Fatalf("expected one transaction, got %d", sql.txs)
	}
	if !sql.ran(sqlinline.QMarkDonationsUsed) || !sql.ran(sqlinline.QMarkRequestDelivered) {
		t.Fatalf("expected both updates to run, got %d statements", len(sql.execs))
	}
}

func TestFulfillRequestRequiresDonations(t *testing.T) {
	sql := newScriptedSQL()
	repo := NewRepository(sql, zerolog.Nop())

	_, err := repo.FulfillRequest(context.Background(), 7, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if sql.txs != 0 {
		t.Fatalf("no transaction expected, got %d", sql.txs)
	}
}

func TestFulfillRequestRejectsFulfilledRequest(t *testing.T) {
	sql := newScriptedSQL()
	sql.rows[sqlinline.QLockRequest] = [][]any{{true}}

	repo := NewRepository(sql, zerolog.Nop())
	_, err := repo.FulfillRequest(context.Background(), 7, []int64{3})
	if !errors.Is(err, domain.ErrAlreadyFulfilled) {
		t.Fatalf("expected ErrAlreadyFulfilled, got %v", err)
	}
	if len(sql.execs) != 0 {
		t.Fatalf("no updates expected, got %d", len(sql.execs))
	}
}

func TestFulfillRequestUnknownRequest(t *testing.T) {
	sql := newScriptedSQL()
	repo := NewRepository(sql, zerolog.Nop())

	_, err := repo.FulfillRequest(context.Background(), 7, []int64{3})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "request" {
		t.Fatalf("expected request NotFoundError, got %v", err)
	}
}

func TestFulfillRequestReportsMissingDonations(t *testing.T) {
	sql := newScriptedSQL()
	sql.rows[sqlinline.QLockRequest] = [][]any{{false}}
	sql.rows[sqlinline.QLockDonations] = [][]any{{int64(3), (*int64)(nil)}}

	repo := NewRepository(sql, zerolog.Nop())
	_, err := repo.FulfillRequest(context.Background(), 7, []int64{3, 4, 9})

	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Entity != "donation" || len(nf.Keys) != 2 || nf.Keys[0] != "4" || nf.Keys[1] != "9" {
		t.Fatalf("unexpected missing set: %+v", nf)
	}
	if len(sql.execs) != 0 {
		t.Fatalf("no updates expected, got %d", len(sql.execs))
	}
}

func TestFulfillRequestReportsUsedDonations(t *testing.T) {
	consumer := int64(2)
	sql := newScriptedSQL()
	sql.rows[sqlinline.QLockRequest] = [][]any{{false}}
	sql.rows[sqlinline.QLockDonations] = [][]any{{int64(3), &consumer}, {int64(4), (*int64)(nil)}}

	repo := NewRepository(sql, zerolog.Nop())
	_, err := repo.FulfillRequest(context.Background(), 7, []int64{3, 4})

	var used *domain.AlreadyUsedError
	if !errors.As(err, &used) {
		t.Fatalf("expected AlreadyUsedError, got %v", err)
	}
	if len(used.DonationIDs) != 1 || used.DonationIDs[0] != 3 {
		t.Fatalf("unexpected used set: %v", used.DonationIDs)
	}
	if sql.ran(sqlinline.QMarkDonationsUsed) {
		t.Fatal("donations must not be marked")
	}
}

func TestFulfillRequestDetectsLostUpdate(t *testing.T) {
	sql := newScriptedSQL()
	sql.rows[sqlinline.QLockRequest] = [][]any{{false}}
	sql.rows[sqlinline.QLockDonations] = [][]any{{int64(3), (*int64)(nil)}, {int64(4), (*int64)(nil)}}
	sql.tags[sqlinline.QMarkDonationsUsed] = 1

	repo := NewRepository(sql, zerolog.Nop())
	_, err := repo.FulfillRequest(context.Background(), 7, []int64{3, 4})
	if !errors.Is(err, domain.ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
	if sql.ran(sqlinline.QMarkRequestDelivered) {
		t.Fatal("request must not be marked delivered")
	}
}

func TestMarkDonationUsedResolvesMiss(t *testing.T) {
	consumer := int64(2)
	sql := newScriptedSQL()
	sql.rows[sqlinline.QSelectRequestByID] = [][]any{requestRow(7, false)}
	sql.rows[sqlinline.QSelectDonationByID] = [][]any{donationRow(3, &consumer)}
	repo := NewRepository(sql, zerolog.Nop())

	if err := repo.MarkDonationUsed(context.Background(), 3, 7); !errors.Is(err, domain.ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}

	delete(sql.rows, sqlinline.QSelectDonationByID)
	if err := repo.MarkDonationUsed(context.Background(), 3, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	sql.tags[sqlinline.QMarkDonationUsed] = 1
	if err := repo.MarkDonationUsed(context.Background(), 3, 7); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestMarkDonationUsedChecksRequestFirst(t *testing.T) {
	consumer := int64(2)
	sql := newScriptedSQL()
	sql.rows[sqlinline.QSelectDonationByID] = [][]any{donationRow(3, &consumer)}
	repo := NewRepository(sql, zerolog.Nop())

	err := repo.MarkDonationUsed(context.Background(), 3, 99)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "request" {
		t.Fatalf("expected request not found, got %v", err)
	}
	if sql.ran(sqlinline.QMarkDonationUsed) {
		t.Fatal("claim must not run for an unknown request")
	}
}

func TestTransactionFailuresAreStoreErrors(t *testing.T) {
	ctx := context.Background()
	refused := errors.New("begin tx: dial tcp 127.0.0.1:5432: connect: connection refused")

	sql := newScriptedSQL()
	sql.beginErr = refused
	repo := NewRepository(sql, zerolog.Nop())

	_, err := repo.FulfillRequest(ctx, 7, []int64{3})
	if !errors.Is(err, domain.ErrBackingStore) {
		t.Fatalf("FulfillRequest: expected ErrBackingStore, got %v", err)
	}
	err = repo.Do(ctx, func(domain.Repository) error { return nil })
	if !errors.Is(err, domain.ErrBackingStore) || !errors.Is(err, refused) {
		t.Fatalf("Do: expected ErrBackingStore wrapping the cause, got %v", err)
	}

	sql = newScriptedSQL()
	sql.commitErr = errors.New("commit tx: unexpected EOF")
	repo = NewRepository(sql, zerolog.Nop())
	if err := repo.Do(ctx, func(domain.Repository) error { return nil }); !errors.Is(err, domain.ErrBackingStore) {
		t.Fatalf("commit: expected ErrBackingStore, got %v", err)
	}
}

func TestTransactionKeepsCallbackErrors(t *testing.T) {
	repo := NewRepository(newScriptedSQL(), zerolog.Nop())
	boom := errors.New("boom")

	err := repo.Do(context.Background(), func(domain.Repository) error { return boom })
	if err != boom {
		t.Fatalf("expected callback error unchanged, got %v", err)
	}
	err = repo.Do(context.Background(), func(domain.Repository) error { return domain.NotFound("donor", "S1234567A") })
	if !errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBackingStore) {
		t.Fatalf("expected plain not found, got %v", err)
	}
}

func TestGetDonationByIDParsesQuantity(t *testing.T) {
	sql := newScriptedSQL()
	sql.rows[sqlinline.QSelectDonationByID] = [][]any{donationRow(3, nil)}
	repo := NewRepository(sql, zerolog.Nop())

	d, err := repo.GetDonationByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetDonationByID returned error: %v", err)
	}
	if d.Quantity.String() != "450" || d.BloodType != domain.BloodTypeONeg || d.UsedBy != nil {
		t.Fatalf("unexpected donation: %+v", d)
	}
	if d.BranchName != "Bloodbank@HSA" || d.RecordedByUsername != "admin" {
		t.Fatalf("joins not populated: %+v", d)
	}
}

func TestStoreErrMapsPgCodes(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrDuplicateKey},
		{"23503", domain.ErrNotFound},
		{"23514", domain.ErrValidation},
		{"22P02", domain.ErrValidation},
		{"08006", domain.ErrBackingStore},
	}
	for _, tc := range cases {
		err := storeErr("op", &pgconn.PgError{Code: tc.code})
		if !errors.Is(err, tc.want) {
			t.Fatalf("code %s: expected %v, got %v", tc.code, tc.want, err)
		}
	}

	wrapped := domain.NotFound("donor", "S1234567A")
	if got := storeErr("op", wrapped); got != wrapped {
		t.Fatalf("domain errors must pass through, got %v", got)
	}
	if err := storeErr("op", errors.New("dial tcp: refused")); !errors.Is(err, domain.ErrBackingStore) {
		t.Fatalf("expected ErrBackingStore, got %v", err)
	}
}

func TestUniqueIDs(t *testing.T) {
	in := []int64{9, 3, 9, 1, 3}
	got := uniqueIDs(in)
	want := []int64{1, 3, 9}
	if len(got) != len(want) {
		t.Fatalf("uniqueIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("uniqueIDs = %v, want %v", got, want)
		}
	}
	if in[0] != 9 {
		t.Fatal("input must not be modified")
	}
}
