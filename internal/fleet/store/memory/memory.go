// Package memory is the in-memory store used for local runs and unit
// tests. Slices keep insertion order so the deterministic-ordering contract
// in the store interfaces holds without extra bookkeeping.
package memory

import (
	"context"
	"sort"
	"sync"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
)

// Store implements store.CarStore, store.PolicyStore, and store.ClaimStore.
type Store struct {
	mu     sync.RWMutex
	strict bool

	owners   map[domain.OwnerID]models.Owner
	cars     []models.Car
	policies []models.InsurancePolicy
	claims   []models.Claim
}

// Option configures a Store.
type Option func(*Store)

// WithStrictValidation enables the store-write validations the legacy data
// model left unenforced.
func WithStrictValidation() Option {
	return func(s *Store) { s.strict = true }
}

// New constructs an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{owners: make(map[domain.OwnerID]models.Owner)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) CreateOwner(ctx context.Context, owner *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[owner.ID] = *owner
	return nil
}

func (s *Store) CreateCar(ctx context.Context, car *models.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[car.OwnerID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.strict {
		for i := range s.cars {
			if s.cars[i].VIN == car.VIN {
				return sentinel.ErrConflict
			}
		}
	}
	s.cars = append(s.cars, *car)
	return nil
}

func (s *Store) GetCar(ctx context.Context, id domain.CarID) (*models.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.cars {
		if s.cars[i].ID == id {
			car := s.cars[i]
			return &car, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *Store) ListCars(ctx context.Context) ([]models.CarSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]models.CarSummary, 0, len(s.cars))
	for i := range s.cars {
		car := s.cars[i]
		owner := s.owners[car.OwnerID]
		summaries = append(summaries, models.CarSummary{
			ID:         car.ID,
			VIN:        car.VIN,
			Make:       car.Make,
			Model:      car.Model,
			Year:       car.Year,
			OwnerID:    car.OwnerID,
			OwnerName:  owner.Name,
			OwnerEmail: owner.Email,
		})
	}
	return summaries, nil
}

func (s *Store) CreatePolicy(ctx context.Context, policy *models.InsurancePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.carExists(policy.CarID) {
		return sentinel.ErrNotFound
	}
	if s.strict && policy.EndDate != nil && policy.EndDate.Before(policy.StartDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "policy end date precedes start date")
	}
	s.policies = append(s.policies, clonePolicy(policy))
	return nil
}

func (s *Store) ListByCar(ctx context.Context, carID domain.CarID) ([]*models.InsurancePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.InsurancePolicy
	for i := range s.policies {
		if s.policies[i].CarID == carID {
			p := clonePolicy(&s.policies[i])
			out = append(out, &p)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) AnyCovering(ctx context.Context, carID domain.CarID, date domain.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.policies {
		if s.policies[i].CarID == carID && s.policies[i].Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) FindCovering(ctx context.Context, carID domain.CarID, date domain.Date) (*models.InsurancePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []*models.InsurancePolicy
	for i := range s.policies {
		if s.policies[i].CarID == carID && s.policies[i].CoversClaim(date) {
			p := clonePolicy(&s.policies[i])
			candidates = append(candidates, &p)
		}
	}
	if len(candidates) == 0 {
		return nil, sentinel.ErrNotFound
	}
	sortByStart(candidates)
	return candidates[0], nil
}

func (s *Store) ListExpiredUnlogged(ctx context.Context, today domain.Date) ([]*models.InsurancePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.InsurancePolicy
	for i := range s.policies {
		p := &s.policies[i]
		if !p.ExpirationLogged && p.ExpiredBefore(today) {
			c := clonePolicy(p)
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *Store) MarkExpirationLogged(ctx context.Context, ids []domain.PolicyID) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	flagged := make(map[domain.PolicyID]struct{}, len(ids))
	for _, id := range ids {
		flagged[id] = struct{}{}
	}
	for i := range s.policies {
		if _, ok := flagged[s.policies[i].ID]; ok {
			s.policies[i].ExpirationLogged = true
		}
	}
	return nil
}

func (s *Store) CreateClaim(ctx context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.strict && claim.Amount < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "claim amount must not be negative")
	}
	if err := ctx.Err(); err != nil {
		// an aborted registration must not leave a partially-written claim
		return err
	}
	s.claims = append(s.claims, *claim)
	return nil
}

func (s *Store) ListByPolicies(ctx context.Context, policyIDs []domain.PolicyID) ([]*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[domain.PolicyID]struct{}, len(policyIDs))
	for _, id := range policyIDs {
		wanted[id] = struct{}{}
	}
	var out []*models.Claim
	for i := range s.claims {
		if _, ok := wanted[s.claims[i].PolicyID]; ok {
			c := s.claims[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *Store) carExists(id domain.CarID) bool {
	for i := range s.cars {
		if s.cars[i].ID == id {
			return true
		}
	}
	return false
}

// clonePolicy copies a policy including its nullable end date so callers
// never alias store-owned memory.
func clonePolicy(p *models.InsurancePolicy) models.InsurancePolicy {
	c := *p
	if p.EndDate != nil {
		end := *p.EndDate
		c.EndDate = &end
	}
	return c
}

// sortByStart orders policies by StartDate ascending; the stable sort keeps
// insertion order among equal start dates.
func sortByStart(policies []*models.InsurancePolicy) {
	sort.SliceStable(policies, func(i, j int) bool {
		return policies[i].StartDate.Before(policies[j].StartDate)
	})
}
