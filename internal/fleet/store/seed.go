package store

import (
	"context"
	"fmt"
	"time"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/domain"
)

// SeedDemoFleet populates the demo owners, cars, and policies when the
// store is empty. The Groupama policy is open-ended on purpose: it keeps the
// validity/claim-eligibility asymmetry reachable from a fresh database.
func SeedDemoFleet(ctx context.Context, cars CarStore, policies PolicyStore) error {
	existing, err := cars.ListCars(ctx)
	if err != nil {
		return fmt.Errorf("check existing fleet: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	ana := &models.Owner{ID: domain.NewOwnerID(), Name: "Ana Pop", Email: "ana.pop@example.com"}
	bogdan := &models.Owner{ID: domain.NewOwnerID(), Name: "Bogdan Ionescu", Email: "bogdan.ionescu@example.com"}
	for _, owner := range []*models.Owner{ana, bogdan} {
		if err := cars.CreateOwner(ctx, owner); err != nil {
			return fmt.Errorf("seed owner %s: %w", owner.Name, err)
		}
	}

	logan := &models.Car{ID: domain.NewCarID(), VIN: "VIN12345", Make: "Dacia", Model: "Logan", Year: 2018, OwnerID: ana.ID}
	golf := &models.Car{ID: domain.NewCarID(), VIN: "VIN67890", Make: "VW", Model: "Golf", Year: 2021, OwnerID: bogdan.ID}
	for _, car := range []*models.Car{logan, golf} {
		if err := cars.CreateCar(ctx, car); err != nil {
			return fmt.Errorf("seed car %s: %w", car.VIN, err)
		}
	}

	end2024 := domain.NewDate(2024, time.December, 31)
	endSep2025 := domain.NewDate(2025, time.September, 30)
	seedPolicies := []*models.InsurancePolicy{
		{ID: domain.NewPolicyID(), CarID: logan.ID, Provider: "Allianz", StartDate: domain.NewDate(2024, time.January, 1), EndDate: &end2024},
		{ID: domain.NewPolicyID(), CarID: logan.ID, Provider: "Groupama", StartDate: domain.NewDate(2025, time.January, 1), EndDate: nil},
		{ID: domain.NewPolicyID(), CarID: golf.ID, Provider: "Allianz", StartDate: domain.NewDate(2025, time.March, 1), EndDate: &endSep2025},
	}
	for _, policy := range seedPolicies {
		if err := policies.CreatePolicy(ctx, policy); err != nil {
			return fmt.Errorf("seed policy %s: %w", policy.Provider, err)
		}
	}
	return nil
}
