// Package domain holds domain primitives shared across features: typed
// entity IDs, the blood type enum, and date-of-birth handling.
//
// Construct values via the Parse functions at trust boundaries; direct
// casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "lifeline/pkg/domain-errors"
)

// Typed IDs prevent accidental cross-entity assignment at compile time.
type (
	UserID    uuid.UUID
	RequestID uuid.UUID
	SampleID  uuid.UUID
	AlertID   uuid.UUID
	PostID    uuid.UUID
	CommentID uuid.UUID
)

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s)
	return UserID(parsed), err
}

// ParseRequestID validates and returns a RequestID.
func ParseRequestID(s string) (RequestID, error) {
	parsed, err := parseUUID(s)
	return RequestID(parsed), err
}

// ParseSampleID validates and returns a SampleID.
func ParseSampleID(s string) (SampleID, error) {
	parsed, err := parseUUID(s)
	return SampleID(parsed), err
}

// ParseAlertID validates and returns an AlertID.
func ParseAlertID(s string) (AlertID, error) {
	parsed, err := parseUUID(s)
	return AlertID(parsed), err
}

// ParsePostID validates and returns a PostID.
func ParsePostID(s string) (PostID, error) {
	parsed, err := parseUUID(s)
	return PostID(parsed), err
}

// ParseCommentID validates and returns a CommentID.
func ParseCommentID(s string) (CommentID, error) {
	parsed, err := parseUUID(s)
	return CommentID(parsed), err
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id RequestID) String() string { return uuid.UUID(id).String() }
func (id SampleID) String() string  { return uuid.UUID(id).String() }
func (id AlertID) String() string   { return uuid.UUID(id).String() }
func (id PostID) String() string    { return uuid.UUID(id).String() }
func (id CommentID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SampleID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id PostID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CommentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
