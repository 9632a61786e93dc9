package domain

import "context"

// ReferenceLoader is implemented by stores that can load static branch and
// staff data. Loading is idempotent.
type ReferenceLoader interface {
	UpsertBranches(ctx context.Context, branches []Branch) error
	UpsertStaff(ctx context.Context, staff []Staff) error
}

// DefaultBranches are the collection sites the bank operates.
var DefaultBranches = []Branch{
	{ID: 10001, Name: "Bloodbank@HSA", Address: "11 Outram Road", PostalCode: "169078"},
	{ID: 10002, Name: "Bloodbank@Dhoby Ghaut", Address: "51 Penang Road", PostalCode: "238463"},
	{ID: 10003, Name: "Bloodbank@Westgate", Address: "3 Gateway Drive", PostalCode: "608532"},
	{ID: 10004, Name: "Bloodbank@Woodlands", Address: "900 South Woodlands Drive", PostalCode: "730900"},
}

// DefaultStaff seeds one administrator for the first branch.
var DefaultStaff = []Staff{
	{ID: 1, Username: "admin", Name: "Administrator", BranchID: 10001},
}

// LoadDefaultReference upserts DefaultBranches and DefaultStaff.
func LoadDefaultReference(ctx context.Context, loader ReferenceLoader) error {
	if err := loader.UpsertBranches(ctx, DefaultBranches); err != nil {
		return err
	}
	return loader.UpsertStaff(ctx, DefaultStaff)
}
