// Package domain holds the identifier and calendar-date value types shared
// across services, stores, and transport.
//
// IDs are distinct uuid-backed types so the compiler rejects passing a
// PolicyID where a CarID is expected. Raw strings are parsed exactly once,
// at the trust boundary.
package domain

import (
	"github.com/google/uuid"

	dErrors "motorcover/pkg/domain-errors"
)

type (
	// OwnerID identifies an owner.
	OwnerID uuid.UUID
	// CarID identifies a car.
	CarID uuid.UUID
	// PolicyID identifies an insurance policy.
	PolicyID uuid.UUID
	// ClaimID identifies a claim.
	ClaimID uuid.UUID
)

func (id OwnerID) String() string  { return uuid.UUID(id).String() }
func (id CarID) String() string    { return uuid.UUID(id).String() }
func (id PolicyID) String() string { return uuid.UUID(id).String() }
func (id ClaimID) String() string  { return uuid.UUID(id).String() }

// NewOwnerID returns a fresh random OwnerID.
func NewOwnerID() OwnerID { return OwnerID(uuid.New()) }

// NewCarID returns a fresh random CarID.
func NewCarID() CarID { return CarID(uuid.New()) }

// NewPolicyID returns a fresh random PolicyID.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// NewClaimID returns a fresh random ClaimID.
func NewClaimID() ClaimID { return ClaimID(uuid.New()) }

// ParseOwnerID parses a raw string into an OwnerID.
func ParseOwnerID(raw string) (OwnerID, error) {
	u, err := parseUUID(raw, "owner id")
	return OwnerID(u), err
}

// ParseCarID parses a raw string into a CarID.
func ParseCarID(raw string) (CarID, error) {
	u, err := parseUUID(raw, "car id")
	return CarID(u), err
}

// ParsePolicyID parses a raw string into a PolicyID.
func ParsePolicyID(raw string) (PolicyID, error) {
	u, err := parseUUID(raw, "policy id")
	return PolicyID(u), err
}

// ParseClaimID parses a raw string into a ClaimID.
func ParseClaimID(raw string) (ClaimID, error) {
	u, err := parseUUID(raw, "claim id")
	return ClaimID(u), err
}

// parseUUID enforces the invariant that IDs are valid, non-empty, non-nil
// UUIDs. Violations carry CodeInvalidInput for the boundary to reject.
func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid "+what, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil uuid")
	}
	return u, nil
}
