package models

import (
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// Role distinguishes how an account participates in relief coordination.
type Role string

const (
	RoleVolunteer Role = "volunteer"
	RoleDonor     Role = "donor"
	RoleAdmin     Role = "admin"
)

// ParseRole validates external input against the recognized roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleVolunteer, RoleDonor, RoleAdmin:
		return Role(s), nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "role is required")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
}

// User is an account in the coordination backend. DOB stays in its
// dd-mm-yyyy registration form; ages are derived on read, never stored.
// BloodSampleID points at the inventory ledger entry for the user's blood
// group and is copied into approval requests as a snapshot.
type User struct {
	ID            id.UserID
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  string
	DOB           string
	BloodGroup    id.BloodType
	BloodSampleID id.SampleID
	Role          Role
	Active        bool
	CreatedAt     time.Time
}

// FullName joins the name parts the way request snapshots store them.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
