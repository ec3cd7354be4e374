package alerts

import (
	"sort"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

// Generate derives the live alert list from config, lead and proposal
// snapshots at time now. It is a pure function: no stored alert state, no
// side effects. Entities with missing or zero activity timestamps are
// skipped rather than aborting the whole pass.
func Generate(configs []*domain.AutomationConfig, leads []*domain.Lead, proposals []*domain.Proposal, now time.Time) []*domain.AutomationAlert {
	var out []*domain.AutomationAlert

	if cfg := activeConfig(configs, domain.AlertTypeFollowUp); cfg != nil {
		out = append(out, followUpAlerts(cfg, leads, now)...)
	}
	if cfg := activeConfig(configs, domain.AlertTypeProposal); cfg != nil {
		out = append(out, proposalAlerts(cfg, proposals, now)...)
	}

	// Deterministic ordering: most urgent first, then most stale
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		}
		return out[i].DaysSince > out[j].DaysSince
	})

	return out
}

// activeConfig returns the enabled config for a type, or nil. A disabled
// config suppresses every alert of its type.
func activeConfig(configs []*domain.AutomationConfig, alertType domain.AlertType) *domain.AutomationConfig {
	for _, cfg := range configs {
		if cfg.Type == alertType && cfg.Enabled && cfg.DaysThreshold >= 1 {
			return cfg
		}
	}
	return nil
}

// followUpAlerts emits one alert per non-terminal lead whose last update is
// at least threshold days old
func followUpAlerts(cfg *domain.AutomationConfig, leads []*domain.Lead, now time.Time) []*domain.AutomationAlert {
	var out []*domain.AutomationAlert

	for _, lead := range leads {
		if lead.Stage.IsTerminal() {
			continue
		}
		if lead.UpdatedAt.IsZero() || lead.UpdatedAt.After(now) {
			continue
		}

		daysSince := daysBetween(lead.UpdatedAt, now)
		if daysSince < cfg.DaysThreshold {
			continue
		}

		out = append(out, &domain.AutomationAlert{
			ID:           domain.FollowUpAlertID(lead.ID),
			Type:         domain.AlertTypeFollowUp,
			EntityID:     lead.ID,
			CompanyName:  lead.CompanyName,
			ContactName:  lead.ContactName,
			AssigneeID:   lead.AssigneeID,
			AssigneeName: lead.AssigneeName,
			DaysSince:    daysSince,
			Threshold:    cfg.DaysThreshold,
			Priority:     priorityFor(daysSince, cfg.DaysThreshold),
			LastActivity: lead.UpdatedAt,
			GeneratedAt:  now,
		})
	}

	return out
}

// proposalAlerts emits one alert per sent proposal at least threshold days old
func proposalAlerts(cfg *domain.AutomationConfig, proposals []*domain.Proposal, now time.Time) []*domain.AutomationAlert {
	var out []*domain.AutomationAlert

	for _, p := range proposals {
		if p.Status != domain.ProposalStatusSent {
			continue
		}
		if p.SentAt == nil || p.SentAt.IsZero() || p.SentAt.After(now) {
			continue
		}

		daysSince := daysBetween(*p.SentAt, now)
		if daysSince < cfg.DaysThreshold {
			continue
		}

		out = append(out, &domain.AutomationAlert{
			ID:           domain.ProposalAlertID(p.ID),
			Type:         domain.AlertTypeProposal,
			EntityID:     p.ID,
			CompanyName:  p.CompanyName,
			ContactName:  p.ContactName,
			AssigneeID:   p.OwnerID,
			AssigneeName: p.OwnerName,
			DaysSince:    daysSince,
			Threshold:    cfg.DaysThreshold,
			Priority:     priorityFor(daysSince, cfg.DaysThreshold),
			LastActivity: *p.SentAt,
			GeneratedAt:  now,
		})
	}

	return out
}

// priorityFor maps staleness to a tier, first match wins. The generator only
// calls this with daysSince >= threshold, so the floor is Medium; values past
// 1.5x are High and past 2x are Urgent. Ratios are compared directly in
// floating point.
func priorityFor(daysSince, threshold int) domain.Priority {
	d := float64(daysSince)
	t := float64(threshold)

	switch {
	case d >= t*2:
		return domain.PriorityUrgent
	case d >= t*1.5:
		return domain.PriorityHigh
	case d >= t:
		return domain.PriorityMedium
	}
	return domain.PriorityLow
}

// daysBetween returns whole days elapsed from a to b
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
