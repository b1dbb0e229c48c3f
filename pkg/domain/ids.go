// Package domain holds typed identifiers shared across modules. Typed IDs
// prevent cross-type assignment at compile time; construct them via the Parse
// functions at trust boundaries so the validity invariant holds everywhere else.
package domain

import (
	"github.com/google/uuid"

	dErrors "bisaathi/pkg/domain-errors"
)

// UserID identifies a registered user.
type UserID uuid.UUID

// ComplaintID identifies a filed complaint.
type ComplaintID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewComplaintID returns a fresh random ComplaintID.
func NewComplaintID() ComplaintID {
	return ComplaintID(uuid.New())
}

// ParseUserID constructs a UserID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID(uuid.Nil), err
	}
	return UserID(u), nil
}

// ParseComplaintID constructs a ComplaintID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseComplaintID(s string) (ComplaintID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ComplaintID(uuid.Nil), err
	}
	return ComplaintID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ComplaintID) String() string { return uuid.UUID(id).String() }

func (id ComplaintID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
