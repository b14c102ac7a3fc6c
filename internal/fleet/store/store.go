// Package store declares the persistence interfaces the insurance core and
// the expiration scanner consume. Implementations live in the memory and
// postgres subpackages; point lookups return sentinel.ErrNotFound on a miss.
package store

import (
	"context"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/domain"
)

// CarStore provides car and owner access.
type CarStore interface {
	// CreateOwner persists a new owner.
	CreateOwner(ctx context.Context, owner *models.Owner) error
	// CreateCar persists a new car. With strict validation enabled a
	// duplicate VIN is rejected with sentinel.ErrConflict.
	CreateCar(ctx context.Context, car *models.Car) error
	// GetCar returns the car with the given id.
	GetCar(ctx context.Context, id domain.CarID) (*models.Car, error)
	// ListCars returns every car joined with its owner, in insertion order.
	ListCars(ctx context.Context) ([]models.CarSummary, error)
}

// PolicyStore provides insurance policy access.
//
// Ordering contract: ListByCar and FindCovering order policies by StartDate
// ascending, then by insertion order, so claim registration deterministically
// picks the same policy on every run.
type PolicyStore interface {
	// CreatePolicy persists a new policy. With strict validation enabled an
	// EndDate before StartDate is rejected with CodeInvalidInput.
	CreatePolicy(ctx context.Context, policy *models.InsurancePolicy) error
	// ListByCar returns the car's policies.
	ListByCar(ctx context.Context, carID domain.CarID) ([]*models.InsurancePolicy, error)
	// AnyCovering reports whether any policy covers date under the validity
	// rule (open-ended policies count).
	AnyCovering(ctx context.Context, carID domain.CarID, date domain.Date) (bool, error)
	// FindCovering returns the first policy eligible for a claim on date
	// (open-ended policies excluded), or sentinel.ErrNotFound.
	FindCovering(ctx context.Context, carID domain.CarID, date domain.Date) (*models.InsurancePolicy, error)
	// ListExpiredUnlogged returns policies whose EndDate passed before today
	// and whose expiration has not been logged yet.
	ListExpiredUnlogged(ctx context.Context, today domain.Date) ([]*models.InsurancePolicy, error)
	// MarkExpirationLogged flips the expiration-logged flag for the given
	// policies in one batch write. A no-op on an empty id set.
	MarkExpirationLogged(ctx context.Context, ids []domain.PolicyID) error
}

// ClaimStore provides claim access.
type ClaimStore interface {
	// CreateClaim persists a new claim. With strict validation enabled a
	// negative amount is rejected with CodeInvalidInput.
	CreateClaim(ctx context.Context, claim *models.Claim) error
	// ListByPolicies returns all claims registered against the given
	// policies, in insertion order.
	ListByPolicies(ctx context.Context, policyIDs []domain.PolicyID) ([]*models.Claim, error)
}
