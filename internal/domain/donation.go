package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is one collected unit in the ledger. UsedBy is nil while the unit
// is available and is set once, to the consuming request id.
type Donation struct {
	ID          int64           `json:"id"`
	DonorNRIC   string          `json:"donorNric"`
	Quantity    decimal.Decimal `json:"quantity"`
	CollectedAt time.Time       `json:"collectedAt"`
	BranchID    int64           `json:"branchId"`
	RecordedBy  int64           `json:"recordedBy"`
	UsedBy      *int64          `json:"usedBy"`

	// Joined for display; never stored on the donation itself.
	BloodType          BloodType `json:"bloodType,omitempty"`
	BranchName         string    `json:"branchName,omitempty"`
	RecordedByUsername string    `json:"recordedByUsername,omitempty"`
}

// Available reports whether the donation has not been consumed.
func (d Donation) Available() bool {
	return d.UsedBy == nil
}

// ValidateQuantity rejects zero and negative amounts.
func ValidateQuantity(field string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return Invalid(field, "must be positive")
	}
	return nil
}
