// Package postgres is the PostgreSQL-backed store. Queries are hand-written
// against database/sql; the coverage predicates mirror the ones on
// models.InsurancePolicy, including the rule that an open-ended policy
// satisfies validity checks but never claim eligibility.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
)

// Store implements store.CarStore, store.PolicyStore, and store.ClaimStore.
type Store struct {
	db     *sql.DB
	strict bool
}

// Option configures a Store.
type Option func(*Store)

// WithStrictValidation enables the store-write validations the legacy data
// model left unenforced.
func WithStrictValidation() Option {
	return func(s *Store) { s.strict = true }
}

// New constructs a PostgreSQL-backed store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) CreateOwner(ctx context.Context, owner *models.Owner) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO owners (id, name, email) VALUES ($1, $2, $3)`,
		uuid.UUID(owner.ID), owner.Name, nullString(owner.Email),
	)
	if err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	return nil
}

func (s *Store) CreateCar(ctx context.Context, car *models.Car) error {
	if s.strict {
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM cars WHERE vin = $1)`, car.VIN,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check vin: %w", err)
		}
		if exists {
			return fmt.Errorf("vin %s: %w", car.VIN, sentinel.ErrConflict)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cars (id, vin, make, model, year, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(car.ID), car.VIN, car.Make, car.Model, car.Year, uuid.UUID(car.OwnerID),
	)
	if err != nil {
		return fmt.Errorf("create car: %w", err)
	}
	return nil
}

func (s *Store) GetCar(ctx context.Context, id domain.CarID) (*models.Car, error) {
	var (
		car     models.Car
		carID   uuid.UUID
		ownerID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, vin, COALESCE(make, ''), COALESCE(model, ''), year, owner_id FROM cars WHERE id = $1`,
		uuid.UUID(id),
	).Scan(&carID, &car.VIN, &car.Make, &car.Model, &car.Year, &ownerID)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}
	car.ID = domain.CarID(carID)
	car.OwnerID = domain.OwnerID(ownerID)
	return &car, nil
}

func (s *Store) ListCars(ctx context.Context) ([]models.CarSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.vin, COALESCE(c.make, ''), COALESCE(c.model, ''), c.year, o.id, o.name, COALESCE(o.email, '')
		 FROM cars c
		 JOIN owners o ON o.id = c.owner_id
		 ORDER BY c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.CarSummary, 0)
	for rows.Next() {
		var (
			sum     models.CarSummary
			carID   uuid.UUID
			ownerID uuid.UUID
		)
		if err := rows.Scan(&carID, &sum.VIN, &sum.Make, &sum.Model, &sum.Year,
			&ownerID, &sum.OwnerName, &sum.OwnerEmail); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		sum.ID = domain.CarID(carID)
		sum.OwnerID = domain.OwnerID(ownerID)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	return summaries, nil
}

func (s *Store) CreatePolicy(ctx context.Context, policy *models.InsurancePolicy) error {
	if s.strict && policy.EndDate != nil && policy.EndDate.Before(policy.StartDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "policy end date precedes start date")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insurance_policies (id, car_id, provider, start_date, end_date, expiration_logged)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(policy.ID), uuid.UUID(policy.CarID), policy.Provider,
		policy.StartDate, nullDate(policy.EndDate), policy.ExpirationLogged,
	)
	if err != nil {
		return fmt.Errorf("create policy: %w", err)
	}
	return nil
}

const policyColumns = `id, car_id, COALESCE(provider, ''), start_date, end_date, expiration_logged`

func (s *Store) ListByCar(ctx context.Context, carID domain.CarID) ([]*models.InsurancePolicy, error) {
	return s.queryPolicies(ctx,
		`SELECT `+policyColumns+` FROM insurance_policies
		 WHERE car_id = $1
		 ORDER BY start_date, created_at`,
		uuid.UUID(carID),
	)
}

func (s *Store) AnyCovering(ctx context.Context, carID domain.CarID, date domain.Date) (bool, error) {
	var covered bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM insurance_policies
			WHERE car_id = $1
			  AND start_date <= $2
			  AND (end_date IS NULL OR end_date >= $2)
		 )`,
		uuid.UUID(carID), date,
	).Scan(&covered)
	if err != nil {
		return false, fmt.Errorf("check coverage: %w", err)
	}
	return covered, nil
}

func (s *Store) FindCovering(ctx context.Context, carID domain.CarID, date domain.Date) (*models.InsurancePolicy, error) {
	// end_date IS NOT NULL: open-ended policies are not claim-eligible.
	policies, err := s.queryPolicies(ctx,
		`SELECT `+policyColumns+` FROM insurance_policies
		 WHERE car_id = $1
		   AND start_date <= $2
		   AND end_date IS NOT NULL
		   AND end_date >= $2
		 ORDER BY start_date, created_at
		 LIMIT 1`,
		uuid.UUID(carID), date,
	)
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return policies[0], nil
}

func (s *Store) ListExpiredUnlogged(ctx context.Context, today domain.Date) ([]*models.InsurancePolicy, error) {
	return s.queryPolicies(ctx,
		`SELECT `+policyColumns+` FROM insurance_policies
		 WHERE end_date IS NOT NULL
		   AND end_date < $1
		   AND NOT expiration_logged
		 ORDER BY end_date, created_at`,
		today,
	)
}

func (s *Store) MarkExpirationLogged(ctx context.Context, ids []domain.PolicyID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE insurance_policies SET expiration_logged = TRUE WHERE id = ANY($1::uuid[])`,
		pq.Array(raw),
	)
	if err != nil {
		return fmt.Errorf("mark expiration logged: %w", err)
	}
	return nil
}

func (s *Store) CreateClaim(ctx context.Context, claim *models.Claim) error {
	if s.strict && claim.Amount < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "claim amount must not be negative")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (id, policy_id, claim_date, description, amount)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(claim.ID), uuid.UUID(claim.PolicyID), claim.ClaimDate,
		claim.Description, claim.Amount,
	)
	if err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *Store) ListByPolicies(ctx context.Context, policyIDs []domain.PolicyID) ([]*models.Claim, error) {
	if len(policyIDs) == 0 {
		return []*models.Claim{}, nil
	}
	raw := make([]string, 0, len(policyIDs))
	for _, id := range policyIDs {
		raw = append(raw, id.String())
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, policy_id, claim_date, description, amount
		 FROM claims
		 WHERE policy_id = ANY($1::uuid[])
		 ORDER BY created_at`,
		pq.Array(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var claims []*models.Claim
	for rows.Next() {
		var (
			claim    models.Claim
			claimID  uuid.UUID
			policyID uuid.UUID
		)
		if err := rows.Scan(&claimID, &policyID, &claim.ClaimDate, &claim.Description, &claim.Amount); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claim.ID = domain.ClaimID(claimID)
		claim.PolicyID = domain.PolicyID(policyID)
		claims = append(claims, &claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

func (s *Store) queryPolicies(ctx context.Context, query string, args ...any) ([]*models.InsurancePolicy, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var policies []*models.InsurancePolicy
	for rows.Next() {
		var (
			policy   models.InsurancePolicy
			policyID uuid.UUID
			carID    uuid.UUID
			endDate  sql.NullTime
		)
		if err := rows.Scan(&policyID, &carID, &policy.Provider, &policy.StartDate,
			&endDate, &policy.ExpirationLogged); err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		policy.ID = domain.PolicyID(policyID)
		policy.CarID = domain.CarID(carID)
		if endDate.Valid {
			end := domain.DateOf(endDate.Time)
			policy.EndDate = &end
		}
		policies = append(policies, &policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	return policies, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d *domain.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time(), Valid: true}
}
