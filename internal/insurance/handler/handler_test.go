package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"motorcover/internal/fleet/models"
	"motorcover/internal/fleet/store/memory"
	"motorcover/internal/insurance"
	"motorcover/internal/insurance/handler"
	"motorcover/internal/insurance/metrics"
	"motorcover/pkg/domain"
)

type HandlerSuite struct {
	suite.Suite
	store  *memory.Store
	router chi.Router

	car *models.Car
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.store = memory.New()
	ctx := context.Background()

	owner := &models.Owner{ID: domain.NewOwnerID(), Name: "Ana Pop", Email: "ana.pop@example.com"}
	s.Require().NoError(s.store.CreateOwner(ctx, owner))
	s.car = &models.Car{ID: domain.NewCarID(), VIN: "VIN12345", Make: "Dacia", Model: "Logan", Year: 2018, OwnerID: owner.ID}
	s.Require().NoError(s.store.CreateCar(ctx, s.car))

	end := domain.NewDate(2024, time.December, 31)
	s.Require().NoError(s.store.CreatePolicy(ctx, &models.InsurancePolicy{
		ID:        domain.NewPolicyID(),
		CarID:     s.car.ID,
		Provider:  "Allianz",
		StartDate: domain.NewDate(2024, time.January, 1),
		EndDate:   &end,
	}))

	logger := slog.New(slog.DiscardHandler)
	service, err := insurance.New(s.store, s.store, s.store, logger, metrics.NewWith(prometheus.NewRegistry()))
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	handler.New(service, logger).Register(s.router)
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(w.Body).Decode(v))
}

func (s *HandlerSuite) TestListCars() {
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars", nil))
	s.Require().Equal(http.StatusOK, w.Code)

	var cars []handler.CarResponse
	s.decode(w, &cars)
	s.Require().Len(cars, 1)
	s.Equal(s.car.ID.String(), cars[0].ID)
	s.Equal("VIN12345", cars[0].VIN)
	s.Equal("Ana Pop", cars[0].OwnerName)
}

func (s *HandlerSuite) TestInsuranceValid() {
	s.Run("covered date", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/"+s.car.ID.String()+"/insurance-valid?date=2024-06-01", nil))
		s.Require().Equal(http.StatusOK, w.Code)

		var resp handler.ValidityResponse
		s.decode(w, &resp)
		s.Equal(s.car.ID.String(), resp.CarID)
		s.Equal("2024-06-01", resp.Date)
		s.True(resp.Valid)
	})

	s.Run("uncovered date", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/"+s.car.ID.String()+"/insurance-valid?date=2025-01-01", nil))
		s.Require().Equal(http.StatusOK, w.Code)

		var resp handler.ValidityResponse
		s.decode(w, &resp)
		s.False(resp.Valid)
	})

	s.Run("malformed date is rejected before the core", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/"+s.car.ID.String()+"/insurance-valid?date=junk", nil))
		s.Require().Equal(http.StatusBadRequest, w.Code)

		var body map[string]string
		s.decode(w, &body)
		s.Equal("invalid_input", body["error"])
	})

	s.Run("unknown car is 404", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/"+domain.NewCarID().String()+"/insurance-valid?date=2024-06-01", nil))
		s.Require().Equal(http.StatusNotFound, w.Code)

		var body map[string]string
		s.decode(w, &body)
		s.Equal("not_found", body["error"])
	})

	s.Run("malformed car id is 400", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/42/insurance-valid?date=2024-06-01", nil))
		s.Require().Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestRegisterClaim() {
	s.Run("accepted claim echoes the submission", func() {
		body := strings.NewReader(`{"claimDate":"2024-06-01","description":"dent","amount":200}`)
		w := s.do(httptest.NewRequest(http.MethodPost, "/api/cars/"+s.car.ID.String()+"/claims", body))
		s.Require().Equal(http.StatusOK, w.Code)

		var resp handler.ClaimResponse
		s.decode(w, &resp)
		s.Equal(s.car.ID.String(), resp.CarID)
		s.Equal("2024-06-01", resp.ClaimDate)
		s.Equal("dent", resp.Description)
		s.Equal(200.0, resp.Amount)
	})

	s.Run("date outside every policy is invalid_operation", func() {
		body := strings.NewReader(`{"claimDate":"2030-06-01","description":"dent","amount":200}`)
		w := s.do(httptest.NewRequest(http.MethodPost, "/api/cars/"+s.car.ID.String()+"/claims", body))
		s.Require().Equal(http.StatusBadRequest, w.Code)

		var resp map[string]string
		s.decode(w, &resp)
		s.Equal("invalid_operation", resp["error"])
		s.Equal("no eligible policy found for the specified claim date", resp["error_description"])
	})

	s.Run("malformed body is invalid_input", func() {
		w := s.do(httptest.NewRequest(http.MethodPost, "/api/cars/"+s.car.ID.String()+"/claims", strings.NewReader("{")))
		s.Require().Equal(http.StatusBadRequest, w.Code)

		var resp map[string]string
		s.decode(w, &resp)
		s.Equal("invalid_input", resp["error"])
	})

	s.Run("missing description is invalid_input", func() {
		body := strings.NewReader(`{"claimDate":"2024-06-01","description":"  ","amount":200}`)
		w := s.do(httptest.NewRequest(http.MethodPost, "/api/cars/"+s.car.ID.String()+"/claims", body))
		s.Require().Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("unknown car is 404", func() {
		body := strings.NewReader(`{"claimDate":"2024-06-01","description":"dent","amount":200}`)
		w := s.do(httptest.NewRequest(http.MethodPost, "/api/cars/"+domain.NewCarID().String()+"/claims", body))
		s.Require().Equal(http.StatusNotFound, w.Code)
	})
}

func (s *HandlerSuite) TestCarHistory() {
	s.Run("returns policy and claim events in order", func() {
		body := strings.NewReader(`{"claimDate":"2024-10-15","description":"dent","amount":200}`)
		s.Require().Equal(http.StatusOK, s.do(httptest.NewRequest(http.MethodPost, "/api/cars/"+s.car.ID.String()+"/claims", body)).Code)

		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/"+s.car.ID.String()+"/history", nil))
		s.Require().Equal(http.StatusOK, w.Code)

		var events []handler.TimelineEventResponse
		s.decode(w, &events)
		s.Require().Len(events, 2)
		s.Equal("Policy", events[0].Type)
		s.Equal("2024-01-01", events[0].Date)
		s.Equal("Claim", events[1].Type)
		s.Equal("2024-10-15", events[1].Date)
	})

	s.Run("car without events yields an empty JSON array", func() {
		ctx := context.Background()
		bare := &models.Car{ID: domain.NewCarID(), VIN: "VIN67890", Make: "VW", Model: "Golf", Year: 2021, OwnerID: s.car.OwnerID}
		s.Require().NoError(s.store.CreateCar(ctx, bare))

		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/"+bare.ID.String()+"/history", nil))
		s.Require().Equal(http.StatusOK, w.Code)
		s.Equal("[]", strings.TrimSpace(w.Body.String()))
	})

	s.Run("unknown car is 404", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/cars/"+domain.NewCarID().String()+"/history", nil))
		s.Require().Equal(http.StatusNotFound, w.Code)
	})
}
