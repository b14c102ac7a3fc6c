// Package insurance implements the coverage business logic: point-in-time
// validity evaluation, claim registration against temporal policy coverage,
// and per-car history timelines. It reads current store state on every call
// and keeps no state of its own.
package insurance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"motorcover/internal/fleet/models"
	"motorcover/internal/fleet/store"
	"motorcover/internal/insurance/metrics"
	"motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
	"motorcover/pkg/platform/sentinel"
)

// NoEligiblePolicyMessage is the rejection reason for claims no policy
// covers. Clients match on it, keep it stable.
const NoEligiblePolicyMessage = "no eligible policy found for the specified claim date"

// Service is the insurance core. Each operation opens its own unit of work
// against the store; nothing is cached across calls.
type Service struct {
	cars     store.CarStore
	policies store.PolicyStore
	claims   store.ClaimStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New constructs the insurance service.
func New(cars store.CarStore, policies store.PolicyStore, claims store.ClaimStore,
	logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if cars == nil {
		return nil, fmt.Errorf("car store is required")
	}
	if policies == nil {
		return nil, fmt.Errorf("policy store is required")
	}
	if claims == nil {
		return nil, fmt.Errorf("claim store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics are required")
	}
	return &Service{
		cars:     cars,
		policies: policies,
		claims:   claims,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("motorcover/insurance"),
	}, nil
}

// ListCars returns every car joined with its owner.
func (s *Service) ListCars(ctx context.Context) ([]models.CarSummary, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.ListCars")
	defer span.End()

	cars, err := s.cars.ListCars(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list cars", err)
	}
	return cars, nil
}

// IsInsuranceValid reports whether the car has active coverage on date.
// Coverage intervals are closed on both ends; a policy without an end date
// covers every date from its start onward.
func (s *Service) IsInsuranceValid(ctx context.Context, carID domain.CarID, date domain.Date) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.IsInsuranceValid")
	defer span.End()

	if err := s.requireCar(ctx, carID); err != nil {
		return false, err
	}
	valid, err := s.policies.AnyCovering(ctx, carID, date)
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "evaluate coverage", err)
	}
	s.metrics.ValidityChecks.Inc()
	return valid, nil
}

// RegisterClaim admits a claim when an eligible policy covers claimDate and
// persists it. Eligibility is stricter than validity: the covering policy
// must have a concrete end date. Among eligible policies the one with the
// earliest start date wins; ties fall back to insertion order.
func (s *Service) RegisterClaim(ctx context.Context, carID domain.CarID, claimDate domain.Date,
	description string, amount float64) (*models.Claim, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.RegisterClaim")
	defer span.End()

	if err := s.requireCar(ctx, carID); err != nil {
		return nil, err
	}

	policy, err := s.policies.FindCovering(ctx, carID, claimDate)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ClaimsRejected.Inc()
			return nil, dErrors.New(dErrors.CodeInvalidOperation, NoEligiblePolicyMessage)
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "find covering policy", err)
	}

	claim := &models.Claim{
		ID:          domain.NewClaimID(),
		PolicyID:    policy.ID,
		ClaimDate:   claimDate,
		Description: description,
		Amount:      amount,
	}
	if err := s.claims.CreateClaim(ctx, claim); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, err
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist claim", err)
	}

	s.metrics.ClaimsRegistered.Inc()
	s.logger.InfoContext(ctx, "claim registered",
		"car_id", carID,
		"policy_id", policy.ID,
		"claim_date", claimDate,
	)
	return claim, nil
}

// GetCarHistory merges the car's policies and claims into one timeline
// sorted ascending by date. A car without events yields an empty slice,
// never nil: no history is a valid answer once the car exists.
func (s *Service) GetCarHistory(ctx context.Context, carID domain.CarID) ([]TimelineEvent, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.GetCarHistory")
	defer span.End()

	if err := s.requireCar(ctx, carID); err != nil {
		return nil, err
	}

	policies, err := s.policies.ListByCar(ctx, carID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load policies", err)
	}
	policyIDs := make([]domain.PolicyID, 0, len(policies))
	for _, policy := range policies {
		policyIDs = append(policyIDs, policy.ID)
	}
	claims, err := s.claims.ListByPolicies(ctx, policyIDs)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load claims", err)
	}

	s.metrics.HistoryRequests.Inc()
	return buildTimeline(policies, claims), nil
}

func (s *Service) requireCar(ctx context.Context, carID domain.CarID) error {
	_, err := s.cars.GetCar(ctx, carID)
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(dErrors.CodeNotFound, "car not found", err)
	}
	return dErrors.Wrap(dErrors.CodeInternal, "load car", err)
}
