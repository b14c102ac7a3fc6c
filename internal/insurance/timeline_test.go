package insurance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/domain"
)

func TestBuildTimeline(t *testing.T) {
	end := domain.NewDate(2024, time.December, 31)

	t.Run("policy precedes claim on the same date", func(t *testing.T) {
		date := domain.NewDate(2024, time.June, 1)
		policy := &models.InsurancePolicy{ID: domain.NewPolicyID(), Provider: "Allianz", StartDate: date, EndDate: &end}
		claim := &models.Claim{ID: domain.NewClaimID(), PolicyID: policy.ID, ClaimDate: date, Description: "dent", Amount: 200}

		events := buildTimeline([]*models.InsurancePolicy{policy}, []*models.Claim{claim})

		assert.Len(t, events, 2)
		assert.Equal(t, EventTypePolicy, events[0].Type)
		assert.Equal(t, EventTypeClaim, events[1].Type)
	})

	t.Run("bounded policy description includes both dates", func(t *testing.T) {
		policy := &models.InsurancePolicy{
			Provider:  "Allianz",
			StartDate: domain.NewDate(2024, time.January, 1),
			EndDate:   &end,
		}
		events := buildTimeline([]*models.InsurancePolicy{policy}, nil)
		assert.Equal(t, "Policy provided by Allianz, lasting from 2024-01-01 to 2024-12-31", events[0].Description)
	})

	t.Run("open-ended policy says so instead of a zero date", func(t *testing.T) {
		policy := &models.InsurancePolicy{
			Provider:  "Groupama",
			StartDate: domain.NewDate(2025, time.January, 1),
		}
		events := buildTimeline([]*models.InsurancePolicy{policy}, nil)
		assert.Equal(t, "Policy provided by Groupama, lasting from 2025-01-01 to open-ended", events[0].Description)
	})

	t.Run("claim description carries amount without trailing zeros", func(t *testing.T) {
		claim := &models.Claim{ClaimDate: domain.NewDate(2024, time.June, 1), Description: "windshield", Amount: 450.5}
		events := buildTimeline(nil, []*models.Claim{claim})
		assert.Equal(t, "Claim for windshield, amount 450.5", events[0].Description)
	})

	t.Run("no events yields an empty slice", func(t *testing.T) {
		events := buildTimeline(nil, nil)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}
