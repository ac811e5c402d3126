package models

import (
	"time"

	id "lifeline/pkg/domain"
)

// Sample is one inventory ledger entry: the unit count held for a blood type.
// There is at most one entry per blood type.
type Sample struct {
	ID        id.SampleID
	BloodType id.BloodType
	Units     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
