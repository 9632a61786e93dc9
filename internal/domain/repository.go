package domain

import "context"

// DonorRepository covers the donor reference data the ledger joins against.
type DonorRepository interface {
	GetAllDonors(ctx context.Context) ([]Donor, error)
	GetDonorByNRIC(ctx context.Context, nric string) (*Donor, error)
	InsertDonor(ctx context.Context, donor *Donor) error
	UpdateDonor(ctx context.Context, donor *Donor) error
	DeleteDonorByNRIC(ctx context.Context, nric string) error
}

// DonationRepository persists the donation ledger.
type DonationRepository interface {
	GetAllDonations(ctx context.Context) ([]Donation, error)
	GetDonationByID(ctx context.Context, id int64) (*Donation, error)
	GetDonationsByDonor(ctx context.Context, nric string) ([]Donation, error)
	GetAvailableDonationsByBloodType(ctx context.Context, bloodType BloodType) ([]Donation, error)
	InsertDonation(ctx context.Context, donation *Donation) error
	// MarkDonationUsed sets usedBy only when it is still null and returns an
	// *AlreadyUsedError otherwise.
	MarkDonationUsed(ctx context.Context, donationID, requestID int64) error
}

// RequestRepository persists blood requests.
type RequestRepository interface {
	GetAllRequests(ctx context.Context) ([]BloodRequest, error)
	GetRequestByID(ctx context.Context, id int64) (*BloodRequest, error)
	InsertRequest(ctx context.Context, request *BloodRequest) error
	// FulfillRequest binds every donation to the request and marks it
	// delivered, all or nothing.
	FulfillRequest(ctx context.Context, requestID int64, donationIDs []int64) (*BloodRequest, error)
}

// ReferenceRepository exposes static branch, staff and blood type data.
type ReferenceRepository interface {
	GetAllBranches(ctx context.Context) ([]Branch, error)
	GetBranchByID(ctx context.Context, id int64) (*Branch, error)
	GetStaffByID(ctx context.Context, id int64) (*Staff, error)
	GetBloodTypeID(ctx context.Context, bloodType BloodType) (int, error)
}

// StatsRepository answers aggregate queries natively in the backing store.
type StatsRepository interface {
	GetDashboardStats(ctx context.Context, branchID int64) (*DashboardStats, error)
	GetBloodInventoryByBranchID(ctx context.Context, branchID int64) (*Inventory, error)
}

// Repository is the single seam between the core and a backing store.
type Repository interface {
	DonorRepository
	DonationRepository
	RequestRepository
	ReferenceRepository
	StatsRepository

	// Do runs fn inside one unit of work. The unit commits when fn returns
	// nil and rolls back otherwise. A Do issued on the repository handed to
	// fn joins the outer unit.
	Do(ctx context.Context, fn func(tx Repository) error) error
	Close() error
}
