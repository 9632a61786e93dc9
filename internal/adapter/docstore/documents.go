package docstore

import (
	"time"

	"github.com/shopspring/decimal"

	"bloodbank/internal/domain"
)

type donorDoc struct {
	NRIC             string           `json:"nric"`
	Name             string           `json:"name"`
	DateOfBirth      time.Time        `json:"dateOfBirth"`
	ContactNo        string           `json:"contactNo"`
	BloodType        domain.BloodType `json:"bloodType"`
	RegistrationDate time.Time        `json:"registrationDate"`
}

func (d donorDoc) toDomain() domain.Donor {
	return domain.Donor{
		NRIC:             d.NRIC,
		Name:             d.Name,
		DateOfBirth:      d.DateOfBirth,
		ContactNo:        d.ContactNo,
		BloodType:        d.BloodType,
		RegistrationDate: d.RegistrationDate,
	}
}

func donorDocFrom(d *domain.Donor) donorDoc {
	return donorDoc{
		NRIC:             d.NRIC,
		Name:             d.Name,
		DateOfBirth:      d.DateOfBirth,
		ContactNo:        d.ContactNo,
		BloodType:        d.BloodType,
		RegistrationDate: d.RegistrationDate,
	}
}

// donationDoc lives at donors/{nric}/donations/{id}.
type donationDoc struct {
	ID          int64           `json:"id"`
	Quantity    decimal.Decimal `json:"quantity"`
	CollectedAt time.Time       `json:"collectedAt"`
	BranchID    int64           `json:"branchId"`
	RecordedBy  int64           `json:"recordedBy"`
	UsedBy      *int64          `json:"usedBy"`
}

type requestDoc struct {
	ID          int64                `json:"id"`
	RequesterID int64                `json:"requesterId"`
	BloodType   domain.BloodType     `json:"bloodType"`
	Quantity    decimal.Decimal      `json:"quantity"`
	RequestedAt time.Time            `json:"requestedAt"`
	Address     string               `json:"address"`
	Status      domain.RequestStatus `json:"status"`
	Fulfilled   bool                 `json:"fulfilled"`
}

func (d requestDoc) toDomain() domain.BloodRequest {
	return domain.BloodRequest{
		ID:          d.ID,
		RequesterID: d.RequesterID,
		BloodType:   d.BloodType,
		Quantity:    d.Quantity,
		RequestedAt: d.RequestedAt,
		Address:     d.Address,
		Status:      d.Status,
		Fulfilled:   d.Fulfilled,
	}
}
