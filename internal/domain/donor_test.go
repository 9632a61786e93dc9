package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDonorNormalizeKeepsNameCasing(t *testing.T) {
	d := &Donor{NRIC: " s1234567a ", Name: "  van der\tBerg  ", BloodType: " ab- "}
	d.Normalize()

	if d.NRIC != "S1234567A" {
		t.Fatalf("NRIC = %q", d.NRIC)
	}
	if d.Name != "van der Berg" {
		t.Fatalf("Name = %q, want %q", d.Name, "van der Berg")
	}
	if d.BloodType != BloodTypeABNeg {
		t.Fatalf("BloodType = %q", d.BloodType)
	}
}

func TestDonorNormalizeTruncatesDateOfBirth(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)
	d := &Donor{DateOfBirth: time.Date(1990, time.May, 17, 1, 15, 0, 0, sgt)}
	d.Normalize()

	want := time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC)
	if !d.DateOfBirth.Equal(want) || d.DateOfBirth.Location() != time.UTC {
		t.Fatalf("DateOfBirth = %v, want %v", d.DateOfBirth, want)
	}

	empty := &Donor{}
	empty.Normalize()
	if !empty.DateOfBirth.IsZero() {
		t.Fatalf("zero DateOfBirth changed to %v", empty.DateOfBirth)
	}
}

func TestDonorValidate(t *testing.T) {
	base := Donor{NRIC: "S1234567A", Name: "Tan", BloodType: BloodTypeOPos, DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid donor rejected: %v", err)
	}
	for name, mutate := range map[string]func(*Donor){
		"nric":      func(d *Donor) { d.NRIC = "1234567" },
		"name":      func(d *Donor) { d.Name = "" },
		"bloodType": func(d *Donor) { d.BloodType = "C+" },
		"dob":       func(d *Donor) { d.DateOfBirth = time.Time{} },
	} {
		d := base
		mutate(&d)
		if err := d.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}
