package insurance

import (
	"fmt"
	"sort"
	"strconv"

	"motorcover/internal/fleet/models"
	"motorcover/pkg/domain"
)

// EventType distinguishes timeline entries.
type EventType string

const (
	EventTypePolicy EventType = "Policy"
	EventTypeClaim  EventType = "Claim"
)

// TimelineEvent is one dated entry in a car's chronological history.
type TimelineEvent struct {
	Type        EventType
	Date        domain.Date
	Description string
}

// buildTimeline merges policies and claims into one sequence sorted
// ascending by date. Policies are appended before claims and the sort is
// stable, so on equal dates policy events come first.
func buildTimeline(policies []*models.InsurancePolicy, claims []*models.Claim) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(policies)+len(claims))
	for _, policy := range policies {
		events = append(events, TimelineEvent{
			Type:        EventTypePolicy,
			Date:        policy.StartDate,
			Description: policyDescription(policy),
		})
	}
	for _, claim := range claims {
		events = append(events, TimelineEvent{
			Type:        EventTypeClaim,
			Date:        claim.ClaimDate,
			Description: claimDescription(claim),
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

func policyDescription(policy *models.InsurancePolicy) string {
	end := "open-ended"
	if policy.EndDate != nil {
		end = policy.EndDate.String()
	}
	return fmt.Sprintf("Policy provided by %s, lasting from %s to %s",
		policy.Provider, policy.StartDate, end)
}

func claimDescription(claim *models.Claim) string {
	return fmt.Sprintf("Claim for %s, amount %s",
		claim.Description, strconv.FormatFloat(claim.Amount, 'f', -1, 64))
}
