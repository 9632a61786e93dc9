package domain

import "github.com/shopspring/decimal"

// Inventory is the derived available total per blood type for one branch.
// Storage always carries all eight canonical keys.
type Inventory struct {
	BranchID int64                         `json:"branchId"`
	Storage  map[BloodType]decimal.Decimal `json:"storage"`
}

// NewInventory returns an inventory with every canonical type set to zero.
func NewInventory(branchID int64) *Inventory {
	storage := make(map[BloodType]decimal.Decimal, len(BloodTypes))
	for _, bt := range BloodTypes {
		storage[bt] = decimal.Zero
	}
	return &Inventory{BranchID: branchID, Storage: storage}
}

// Add accumulates qty into the cell for bt. Non-canonical types are ignored.
func (inv *Inventory) Add(bt BloodType, qty decimal.Decimal) {
	cur, ok := inv.Storage[bt]
	if !ok {
		return
	}
	inv.Storage[bt] = cur.Add(qty)
}

// Get returns the cell for bt.
func (inv *Inventory) Get(bt BloodType) decimal.Decimal {
	return inv.Storage[bt]
}

// Total sums every cell.
func (inv *Inventory) Total() decimal.Decimal {
	total := decimal.Zero
	for _, bt := range BloodTypes {
		total = total.Add(inv.Storage[bt])
	}
	return total
}

// TallyInventory accumulates the available donations of branchID by their
// (already resolved) blood type. Donations of other branches, consumed
// donations and unresolved blood types are skipped.
func TallyInventory(branchID int64, donations []Donation) *Inventory {
	inv := NewInventory(branchID)
	for _, d := range donations {
		if d.BranchID != branchID || !d.Available() {
			continue
		}
		inv.Add(d.BloodType, d.Quantity)
	}
	return inv
}
