// Package models defines the fleet entities: owners, cars, policies, and
// claims. The coverage rules live here so both store implementations apply
// the same predicates.
package models

import (
	"motorcover/pkg/domain"
)

// Owner is a car owner. Immutable after seeding.
type Owner struct {
	ID    domain.OwnerID
	Name  string
	Email string // optional
}

// Car is a vehicle belonging to exactly one owner.
//
// VIN uniqueness is not enforced unless the store runs with strict
// validation; the legacy data model allowed duplicates.
type Car struct {
	ID      domain.CarID
	VIN     string
	Make    string
	Model   string
	Year    int
	OwnerID domain.OwnerID
}

// CarSummary is a car joined with its owner, as returned by listings.
type CarSummary struct {
	ID         domain.CarID
	VIN        string
	Make       string
	Model      string
	Year       int
	OwnerID    domain.OwnerID
	OwnerName  string
	OwnerEmail string
}

// InsurancePolicy is a coverage interval for one car. A nil EndDate means
// the policy is open-ended. ExpirationLogged is flipped exactly once by the
// expiration scanner and written by nothing else.
//
// EndDate >= StartDate is not enforced unless the store runs with strict
// validation; the legacy data model allowed inverted intervals.
type InsurancePolicy struct {
	ID                domain.PolicyID
	CarID             domain.CarID
	Provider          string
	StartDate         domain.Date
	EndDate           *domain.Date
	ExpirationLogged  bool
}

// Covers reports whether the policy's coverage interval contains date for
// validity checks: [StartDate, EndDate] closed on both ends, with a nil
// EndDate meaning unbounded future coverage.
func (p *InsurancePolicy) Covers(date domain.Date) bool {
	if !p.StartDate.OnOrBefore(date) {
		return false
	}
	return p.EndDate == nil || p.EndDate.OnOrAfter(date)
}

// CoversClaim reports whether the policy can take a claim on date. Unlike
// Covers, an open-ended policy never qualifies: claim eligibility requires
// a concrete EndDate. Tests pin this asymmetry; do not unify the two rules
// without an explicit behavior change.
func (p *InsurancePolicy) CoversClaim(date domain.Date) bool {
	if p.EndDate == nil {
		return false
	}
	return p.StartDate.OnOrBefore(date) && p.EndDate.OnOrAfter(date)
}

// ExpiredBefore reports whether the policy lapsed strictly before today.
// Open-ended policies never expire.
func (p *InsurancePolicy) ExpiredBefore(today domain.Date) bool {
	return p.EndDate != nil && p.EndDate.Before(today)
}

// Claim records damage claimed against a policy. Insert-only; claims are
// never updated or deleted.
type Claim struct {
	ID          domain.ClaimID
	PolicyID    domain.PolicyID
	ClaimDate   domain.Date
	Description string
	Amount      float64
}
