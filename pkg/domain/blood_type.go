package domain

import dErrors "lifeline/pkg/domain-errors"

// BloodType identifies one of the eight ABO/Rh groups tracked by the
// inventory ledger.
type BloodType string

const (
	BloodTypeAPositive  BloodType = "A+"
	BloodTypeANegative  BloodType = "A-"
	BloodTypeBPositive  BloodType = "B+"
	BloodTypeBNegative  BloodType = "B-"
	BloodTypeABPositive BloodType = "AB+"
	BloodTypeABNegative BloodType = "AB-"
	BloodTypeOPositive  BloodType = "O+"
	BloodTypeONegative  BloodType = "O-"
)

var validBloodTypes = map[BloodType]bool{
	BloodTypeAPositive:  true,
	BloodTypeANegative:  true,
	BloodTypeBPositive:  true,
	BloodTypeBNegative:  true,
	BloodTypeABPositive: true,
	BloodTypeABNegative: true,
	BloodTypeOPositive:  true,
	BloodTypeONegative:  true,
}

// ParseBloodType constructs a BloodType from external input.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "blood type cannot be empty")
	}
	bt := BloodType(s)
	if !bt.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown blood type")
	}
	return bt, nil
}

// IsValid checks if the blood type is one of the supported groups.
func (b BloodType) IsValid() bool {
	return validBloodTypes[b]
}

func (b BloodType) String() string {
	return string(b)
}
