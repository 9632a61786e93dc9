package domain

import "strings"

// BloodType is one of the eight canonical ABO/Rh groups.
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// BloodTypes lists the canonical types in lookup-table order. GetBloodTypeID
// returns the 1-based position in this list.
var BloodTypes = [...]BloodType{
	BloodTypeAPos,
	BloodTypeANeg,
	BloodTypeBPos,
	BloodTypeBNeg,
	BloodTypeABPos,
	BloodTypeABNeg,
	BloodTypeOPos,
	BloodTypeONeg,
}

// ParseBloodType normalises user input such as " ab+ " into a canonical type.
func ParseBloodType(raw string) (BloodType, error) {
	bt := BloodType(strings.ToUpper(strings.TrimSpace(raw)))
	if !bt.Valid() {
		return "", Invalid("bloodType", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	return bt, nil
}

// Valid reports whether bt is canonical.
func (bt BloodType) Valid() bool {
	return bt.ID() > 0
}

// ID returns the lookup id of bt, or 0 when bt is not canonical.
func (bt BloodType) ID() int {
	for i, t := range BloodTypes {
		if t == bt {
			return i + 1
		}
	}
	return 0
}

// BloodTypeByID is the inverse of BloodType.ID.
func BloodTypeByID(id int) (BloodType, bool) {
	if id < 1 || id > len(BloodTypes) {
		return "", false
	}
	return BloodTypes[id-1], true
}
