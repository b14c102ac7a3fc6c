package handler

import (
	"motorcover/internal/fleet/models"
	"motorcover/internal/insurance"
)

// CarResponse is one element of GET /api/cars.
type CarResponse struct {
	ID         string `json:"id"`
	VIN        string `json:"vin"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	OwnerID    string `json:"ownerId"`
	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail,omitempty"`
}

// ValidityResponse answers GET /api/cars/{carID}/insurance-valid.
type ValidityResponse struct {
	CarID string `json:"carId"`
	Date  string `json:"date"`
	Valid bool   `json:"valid"`
}

// ClaimResponse echoes a registered claim.
type ClaimResponse struct {
	CarID       string  `json:"carId"`
	ClaimDate   string  `json:"claimDate"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// TimelineEventResponse is one element of GET /api/cars/{carID}/history.
type TimelineEventResponse struct {
	Type        string `json:"type"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func carResponses(cars []models.CarSummary) []CarResponse {
	out := make([]CarResponse, 0, len(cars))
	for _, car := range cars {
		out = append(out, CarResponse{
			ID:         car.ID.String(),
			VIN:        car.VIN,
			Make:       car.Make,
			Model:      car.Model,
			Year:       car.Year,
			OwnerID:    car.OwnerID.String(),
			OwnerName:  car.OwnerName,
			OwnerEmail: car.OwnerEmail,
		})
	}
	return out
}

func timelineResponses(events []insurance.TimelineEvent) []TimelineEventResponse {
	out := make([]TimelineEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, TimelineEventResponse{
			Type:        string(event.Type),
			Date:        event.Date.String(),
			Description: event.Description,
		})
	}
	return out
}
