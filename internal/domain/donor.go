package domain

import (
	"regexp"
	"strings"
	"time"
)

var nricPattern = regexp.MustCompile(`^[STFGM][0-9]{7}[A-Z]$`)

// Donor is a registered blood donor keyed by NRIC.
type Donor struct {
	NRIC             string    `json:"nric"`
	Name             string    `json:"name"`
	DateOfBirth      time.Time `json:"dateOfBirth"`
	ContactNo        string    `json:"contactNo"`
	BloodType        BloodType `json:"bloodType"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// NormalizeNRIC trims and upper-cases an NRIC.
func NormalizeNRIC(nric string) string {
	return strings.ToUpper(strings.TrimSpace(nric))
}

// ValidateNRIC checks the NRIC shape, e.g. S1234567A.
func ValidateNRIC(nric string) error {
	if !nricPattern.MatchString(nric) {
		return Invalid("nric", "must look like S1234567A")
	}
	return nil
}

// Normalize cleans free-text fields in place. Names keep the casing they
// were entered with. DateOfBirth is reduced to its calendar date at UTC
// midnight.
func (d *Donor) Normalize() {
	d.NRIC = NormalizeNRIC(d.NRIC)
	d.Name = strings.Join(strings.Fields(d.Name), " ")
	if !d.DateOfBirth.IsZero() {
		y, m, day := d.DateOfBirth.Date()
		d.DateOfBirth = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}
	d.ContactNo = strings.TrimSpace(d.ContactNo)
	d.BloodType = BloodType(strings.ToUpper(strings.TrimSpace(string(d.BloodType))))
}

// Validate reports the first malformed field.
func (d *Donor) Validate() error {
	if err := ValidateNRIC(d.NRIC); err != nil {
		return err
	}
	if d.Name == "" {
		return Invalid("name", "is required")
	}
	if !d.BloodType.Valid() {
		return Invalid("bloodType", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	if d.DateOfBirth.IsZero() {
		return Invalid("dateOfBirth", "is required")
	}
	if !d.RegistrationDate.IsZero() && d.DateOfBirth.After(d.RegistrationDate) {
		return Invalid("dateOfBirth", "must precede registration")
	}
	return nil
}
