// Package seed generates synthetic donors and donations for local stacks.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
)

// Earliest is the first collection date handed out.
var Earliest = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Donors are registered before any donation is generated. One per blood type.
var Donors = []domain.Donor{
	donor("S9990000A", "Alice Tan", domain.BloodTypeAPos),
	donor("S9991111A", "Arjun Nair", domain.BloodTypeANeg),
	donor("T0000000B", "Bella Lim", domain.BloodTypeBPos),
	donor("T0001111B", "Bryan Goh", domain.BloodTypeBNeg),
	donor("S8880000C", "Chloe Ng", domain.BloodTypeABPos),
	donor("S8881111C", "Chandra Das", domain.BloodTypeABNeg),
	donor("S7770000D", "Daniel Koh", domain.BloodTypeOPos),
	donor("S7771111D", "Diana Yeo", domain.BloodTypeONeg),
}

func donor(nric, name string, bt domain.BloodType) domain.Donor {
	return domain.Donor{
		NRIC:             nric,
		Name:             name,
		DateOfBirth:      time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		ContactNo:        "90000000",
		BloodType:        bt,
		RegistrationDate: Earliest,
	}
}

// Quantities are drawn from 200 to 950 ml in steps of 50.
func Quantities() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, 16)
	for q := int64(200); q < 1000; q += 50 {
		out = append(out, decimal.NewFromInt(q))
	}
	return out
}

// Plan describes one generation run.
type Plan struct {
	Count      int
	Until      time.Time
	RecordedBy int64
	Rand       *rand.Rand
}

// Step spaces collections a day apart, tightening when Count exceeds the
// number of days between Earliest and until.
func Step(count int, until time.Time) time.Duration {
	days := int(until.Sub(Earliest).Hours() / 24)
	if days <= 0 || count <= days {
		return 24 * time.Hour
	}
	return time.Duration(float64(24*time.Hour) * float64(days) / float64(count))
}

// Donations builds Count donations spread from Earliest onwards.
func Donations(p Plan) ([]domain.Donation, error) {
	if p.Count <= 0 {
		return nil, domain.Invalid("count", "must be positive")
	}
	if p.Rand == nil {
		return nil, errors.New("seed: plan needs a random source")
	}
	branches := domain.DefaultBranches
	quantities := Quantities()
	step := Step(p.Count, p.Until)

	out := make([]domain.Donation, 0, p.Count)
	for i := range p.Count {
		out = append(out, domain.Donation{
			DonorNRIC:   Donors[p.Rand.IntN(len(Donors))].NRIC,
			Quantity:    quantities[p.Rand.IntN(len(quantities))],
			CollectedAt: Earliest.Add(time.Duration(i) * step),
			BranchID:    branches[p.Rand.IntN(len(branches))].ID,
			RecordedBy:  p.RecordedBy,
		})
	}
	return out, nil
}

// Apply registers the seed donors that are missing and records every
// donation in a single unit of work.
func Apply(ctx context.Context, repo domain.Repository, donations []domain.Donation) error {
	return repo.Do(ctx, func(tx domain.Repository) error {
		for _, d := range Donors {
			_, err := tx.GetDonorByNRIC(ctx, d.NRIC)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			if err := tx.InsertDonor(ctx, &d); err != nil {
				return fmt.Errorf("insert donor %s: %w", d.NRIC, err)
			}
		}
		for i := range donations {
			if err := tx.InsertDonation(ctx, &donations[i]); err != nil {
				return fmt.Errorf("insert donation %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// WriteSQL renders donors and donations as PostgreSQL inserts that can be
// loaded with psql against the repository schema.
func WriteSQL(w io.Writer, donations []domain.Donation) error {
	var b strings.Builder
	b.WriteString("insert into donors(nric, name, date_of_birth, contact_no, blood_type_id, registration_date) values\n")
	for i, d := range Donors {
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', %d, '%s')",
			d.NRIC, d.Name, d.DateOfBirth.Format(time.DateOnly), d.ContactNo,
			d.BloodType.ID(), d.RegistrationDate.Format(time.RFC3339))
		b.WriteString(separator(i, len(Donors), "\non conflict (nric) do nothing;\n\n"))
	}

	if len(donations) > 0 {
		b.WriteString("insert into donations(nric, quantity, collected_at, branch_id, recorded_by) values\n")
		for i, d := range donations {
			fmt.Fprintf(&b, "  ('%s', %s, '%s', %d, %d)",
				d.DonorNRIC, d.Quantity.String(), d.CollectedAt.UTC().Format(time.RFC3339), d.BranchID, d.RecordedBy)
			b.WriteString(separator(i, len(donations), ";\n"))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func separator(i, n int, last string) string {
	if i == n-1 {
		return last
	}
	return ",\n"
}
