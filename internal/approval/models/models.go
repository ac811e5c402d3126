package models

import (
	"time"

	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// RequestType distinguishes a donation offer from a blood withdrawal request.
type RequestType string

const (
	TypeDonation     RequestType = "donation"
	TypeBloodRequest RequestType = "blood_request"
)

// ParseRequestType validates external input against the two recognized types.
func ParseRequestType(s string) (RequestType, error) {
	switch RequestType(s) {
	case TypeDonation, TypeBloodRequest:
		return RequestType(s), nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "request type is required")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid request type")
	}
}

// Status is the approval request lifecycle state. It starts at pending and
// transitions at most once, to exactly one terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether the status admits no further transition.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseDecision validates a review decision. Only the two terminal states are
// decisions; pending is not.
func ParseDecision(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be approved or rejected")
	}
}

// ApprovalRequest is one donation or blood-request transaction awaiting an
// admin decision. RequesterName, BloodGroup, DOB and BloodSampleID are
// snapshots taken from the user record at creation time; review reads the
// snapshot, never a fresh user lookup, so the reviewed transaction reflects
// what was requested.
type ApprovalRequest struct {
	ID            id.RequestID
	Type          RequestType
	RequesterID   id.UserID
	RequesterName string
	BloodGroup    id.BloodType
	BloodSampleID id.SampleID
	DOB           string
	Units         int
	Disease       string
	Status        Status
	CreatedAt     time.Time
	// ReviewedBy is nil exactly while Status == pending.
	ReviewedBy *id.UserID
}

// ReviewedRequest augments a request with the age derived from the dob
// snapshot for the admin listing. Age is nil when the snapshot is missing or
// unparseable.
type ReviewedRequest struct {
	ApprovalRequest
	Age *int
}
