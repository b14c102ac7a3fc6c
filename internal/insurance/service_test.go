package insurance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"motorcover/internal/fleet/models"
	"motorcover/internal/fleet/store/memory"
	"motorcover/internal/insurance/metrics"
	"motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Store
	service *Service
	ctx     context.Context

	owner *models.Owner
	car   *models.Car
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.ctx = context.Background()

	var err error
	s.service, err = New(s.store, s.store, s.store,
		slog.New(slog.DiscardHandler), metrics.NewWith(prometheus.NewRegistry()))
	s.Require().NoError(err)

	s.owner = &models.Owner{ID: domain.NewOwnerID(), Name: "Ana Pop", Email: "ana.pop@example.com"}
	s.Require().NoError(s.store.CreateOwner(s.ctx, s.owner))
	s.car = &models.Car{ID: domain.NewCarID(), VIN: "VIN12345", Make: "Dacia", Model: "Logan", Year: 2018, OwnerID: s.owner.ID}
	s.Require().NoError(s.store.CreateCar(s.ctx, s.car))
}

func (s *ServiceSuite) addPolicy(provider string, start domain.Date, end *domain.Date) *models.InsurancePolicy {
	policy := &models.InsurancePolicy{
		ID:        domain.NewPolicyID(),
		CarID:     s.car.ID,
		Provider:  provider,
		StartDate: start,
		EndDate:   end,
	}
	s.Require().NoError(s.store.CreatePolicy(s.ctx, policy))
	return policy
}

func datePtr(d domain.Date) *domain.Date { return &d }

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.store, s.store, slog.New(slog.DiscardHandler), metrics.NewWith(prometheus.NewRegistry()))
		s.Error(err)
		s.Contains(err.Error(), "car store is required")
	})
}

func (s *ServiceSuite) TestListCars() {
	cars, err := s.service.ListCars(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cars, 1)
	s.Equal(s.car.VIN, cars[0].VIN)
	s.Equal(s.owner.Name, cars[0].OwnerName)
}

func (s *ServiceSuite) TestIsInsuranceValid() {
	s.addPolicy("Allianz", domain.NewDate(2024, time.January, 1), datePtr(domain.NewDate(2024, time.December, 31)))

	s.Run("date inside the interval is valid", func() {
		valid, err := s.service.IsInsuranceValid(s.ctx, s.car.ID, domain.NewDate(2024, time.June, 1))
		s.Require().NoError(err)
		s.True(valid)
	})

	s.Run("date after the interval is invalid", func() {
		valid, err := s.service.IsInsuranceValid(s.ctx, s.car.ID, domain.NewDate(2025, time.January, 1))
		s.Require().NoError(err)
		s.False(valid)
	})

	s.Run("interval is closed on both ends", func() {
		onStart, err := s.service.IsInsuranceValid(s.ctx, s.car.ID, domain.NewDate(2024, time.January, 1))
		s.Require().NoError(err)
		s.True(onStart, "start date itself is covered")

		onEnd, err := s.service.IsInsuranceValid(s.ctx, s.car.ID, domain.NewDate(2024, time.December, 31))
		s.Require().NoError(err)
		s.True(onEnd, "end date itself is covered")

		dayAfter, err := s.service.IsInsuranceValid(s.ctx, s.car.ID, domain.NewDate(2025, time.January, 1))
		s.Require().NoError(err)
		s.False(dayAfter, "day after the end date is not covered")
	})

	s.Run("open-ended policy covers any future date", func() {
		s.addPolicy("Groupama", domain.NewDate(2025, time.January, 1), nil)
		valid, err := s.service.IsInsuranceValid(s.ctx, s.car.ID, domain.NewDate(2042, time.June, 1))
		s.Require().NoError(err)
		s.True(valid)
	})

	s.Run("unknown car is not_found", func() {
		_, err := s.service.IsInsuranceValid(s.ctx, domain.NewCarID(), domain.NewDate(2024, time.June, 1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRegisterClaim() {
	s.Run("no policies at all is invalid_operation", func() {
		_, err := s.service.RegisterClaim(s.ctx, s.car.ID, domain.NewDate(2024, time.June, 1), "dent", 200)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOperation))
		s.Equal(NoEligiblePolicyMessage, dErrors.MessageOf(err))
	})

	s.Run("registers against the covering policy", func() {
		policy := s.addPolicy("Allianz", domain.NewDate(2024, time.January, 1), datePtr(domain.NewDate(2024, time.December, 31)))

		claim, err := s.service.RegisterClaim(s.ctx, s.car.ID, domain.NewDate(2024, time.June, 1), "dent", 200)
		s.Require().NoError(err)
		s.Equal(policy.ID, claim.PolicyID)
		s.Equal("dent", claim.Description)
		s.Equal(200.0, claim.Amount)

		stored, err := s.store.ListByPolicies(s.ctx, []domain.PolicyID{policy.ID})
		s.Require().NoError(err)
		s.Require().Len(stored, 1)
		s.Equal(claim.ID, stored[0].ID)
	})

	// An open-ended policy makes the date valid for coverage queries but
	// never eligible for claims. This pins the current behavior; changing
	// it is a deliberate, reviewable decision.
	s.Run("open-ended policy never takes a claim", func() {
		s.addPolicy("Groupama", domain.NewDate(2025, time.January, 1), nil)
		date := domain.NewDate(2025, time.June, 1)

		valid, err := s.service.IsInsuranceValid(s.ctx, s.car.ID, date)
		s.Require().NoError(err)
		s.True(valid, "the same date counts as covered")

		_, err = s.service.RegisterClaim(s.ctx, s.car.ID, date, "windshield", 450)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOperation))
	})

	s.Run("claim on the end date is accepted", func() {
		policy := s.addPolicy("Allianz", domain.NewDate(2023, time.May, 1), datePtr(domain.NewDate(2024, time.May, 1)))
		claim, err := s.service.RegisterClaim(s.ctx, s.car.ID, domain.NewDate(2024, time.May, 1), "mirror", 90)
		s.Require().NoError(err)
		s.Equal(policy.ID, claim.PolicyID)
	})

	s.Run("unknown car is not_found", func() {
		_, err := s.service.RegisterClaim(s.ctx, domain.NewCarID(), domain.NewDate(2024, time.June, 1), "dent", 200)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestGetCarHistory() {
	s.Run("empty history is an empty slice, not an error", func() {
		events, err := s.service.GetCarHistory(s.ctx, s.car.ID)
		s.Require().NoError(err)
		s.NotNil(events)
		s.Empty(events)
	})

	s.Run("merges policies and claims sorted by date", func() {
		policy := s.addPolicy("Allianz", domain.NewDate(2023, time.May, 1), datePtr(domain.NewDate(2024, time.May, 1)))
		_, err := s.service.RegisterClaim(s.ctx, s.car.ID, domain.NewDate(2023, time.October, 15), "dent", 200)
		s.Require().NoError(err)

		events, err := s.service.GetCarHistory(s.ctx, s.car.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 2)

		s.Equal(EventTypePolicy, events[0].Type)
		s.Equal(policy.StartDate.String(), events[0].Date.String())
		s.Equal(EventTypeClaim, events[1].Type)
		s.Equal("2023-10-15", events[1].Date.String())

		for i := 1; i < len(events); i++ {
			s.False(events[i].Date.Before(events[i-1].Date), "events must be non-decreasing by date")
		}
	})

	s.Run("count equals policies plus claims", func() {
		s.addPolicy("Groupama", domain.NewDate(2024, time.June, 1), datePtr(domain.NewDate(2025, time.May, 31)))
		_, err := s.service.RegisterClaim(s.ctx, s.car.ID, domain.NewDate(2024, time.August, 1), "bumper", 120)
		s.Require().NoError(err)

		events, err := s.service.GetCarHistory(s.ctx, s.car.ID)
		s.Require().NoError(err)
		s.Len(events, 4) // 2 policies + 2 claims
	})

	s.Run("unknown car is not_found", func() {
		_, err := s.service.GetCarHistory(s.ctx, domain.NewCarID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
