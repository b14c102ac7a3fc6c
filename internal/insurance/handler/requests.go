package handler

import (
	"strings"

	"motorcover/pkg/domain"
	dErrors "motorcover/pkg/domain-errors"
)

// RegisterClaimRequest is the POST /api/cars/{carID}/claims body.
type RegisterClaimRequest struct {
	ClaimDate   string  `json:"claimDate"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Validate checks the request and returns the parsed claim date.
func (r *RegisterClaimRequest) Validate() (domain.Date, error) {
	claimDate, err := domain.ParseDate(r.ClaimDate)
	if err != nil {
		return domain.Date{}, err
	}
	if strings.TrimSpace(r.Description) == "" {
		return domain.Date{}, dErrors.New(dErrors.CodeInvalidInput, "description is required")
	}
	return claimDate, nil
}
