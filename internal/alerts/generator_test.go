package alerts

import (
	"testing"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) time.Time {
	return now.AddDate(0, 0, -days)
}

func followUpConfig(threshold int, enabled bool) *domain.AutomationConfig {
	return &domain.AutomationConfig{
		Type:          domain.AlertTypeFollowUp,
		DaysThreshold: threshold,
		Enabled:       enabled,
	}
}

func proposalConfig(threshold int, enabled bool) *domain.AutomationConfig {
	return &domain.AutomationConfig{
		Type:          domain.AlertTypeProposal,
		DaysThreshold: threshold,
		Enabled:       enabled,
	}
}

func lead(id string, stage domain.LeadStage, updatedAt time.Time) *domain.Lead {
	return &domain.Lead{
		ID:          id,
		CompanyName: "Acme Corp",
		ContactName: "Jane Doe",
		AssigneeID:  "user-1",
		Stage:       stage,
		UpdatedAt:   updatedAt,
	}
}

func proposal(id string, status domain.ProposalStatus, sentAt *time.Time) *domain.Proposal {
	return &domain.Proposal{
		ID:          id,
		LeadID:      "lead-" + id,
		CompanyName: "Acme Corp",
		Status:      status,
		OwnerID:     "user-2",
		SentAt:      sentAt,
	}
}

// TestGenerate_EmptyConfigs verifies that no configs yields no alerts
func TestGenerate_EmptyConfigs(t *testing.T) {
	leads := []*domain.Lead{lead("l1", domain.LeadStageContacted, daysAgo(30))}

	got := Generate(nil, leads, nil, now)
	if len(got) != 0 {
		t.Errorf("Generate() returned %d alerts, want 0", len(got))
	}
}

// TestGenerate_DisabledConfig verifies that a disabled config suppresses its type
func TestGenerate_DisabledConfig(t *testing.T) {
	configs := []*domain.AutomationConfig{followUpConfig(3, false)}
	leads := []*domain.Lead{lead("l1", domain.LeadStageContacted, daysAgo(30))}

	got := Generate(configs, leads, nil, now)
	if len(got) != 0 {
		t.Errorf("Generate() returned %d alerts with disabled config, want 0", len(got))
	}
}

// TestGenerate_TerminalStagesNeverAlert verifies the terminal stage exclusion
// regardless of staleness
func TestGenerate_TerminalStagesNeverAlert(t *testing.T) {
	configs := []*domain.AutomationConfig{followUpConfig(1, true)}

	for _, stage := range []domain.LeadStage{domain.LeadStageWon, domain.LeadStageLost, domain.LeadStageOnboarded} {
		t.Run(string(stage), func(t *testing.T) {
			leads := []*domain.Lead{lead("l1", stage, daysAgo(365))}
			got := Generate(configs, leads, nil, now)
			if len(got) != 0 {
				t.Errorf("Generate() produced alert for terminal stage %s", stage)
			}
		})
	}
}

// TestGenerate_ThresholdBoundary verifies daysSince >= threshold for every
// alert produced
func TestGenerate_ThresholdBoundary(t *testing.T) {
	configs := []*domain.AutomationConfig{followUpConfig(3, true)}

	tests := []struct {
		name      string
		daysStale int
		wantAlert bool
	}{
		{"below threshold", 2, false},
		{"at threshold", 3, true},
		{"above threshold", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads := []*domain.Lead{lead("l1", domain.LeadStageContacted, daysAgo(tt.daysStale))}
			got := Generate(configs, leads, nil, now)

			if tt.wantAlert && len(got) != 1 {
				t.Fatalf("Generate() returned %d alerts, want 1", len(got))
			}
			if !tt.wantAlert && len(got) != 0 {
				t.Fatalf("Generate() returned %d alerts, want 0", len(got))
			}
			if tt.wantAlert {
				if got[0].DaysSince < got[0].Threshold {
					t.Errorf("alert has daysSince %d < threshold %d", got[0].DaysSince, got[0].Threshold)
				}
			}
		})
	}
}

// TestGenerate_FollowUpScenario verifies the reference scenario: threshold 3,
// lead 7 days stale, stage Contacted. Urgent boundary is 3*2=6 and 7 >= 6.
func TestGenerate_FollowUpScenario(t *testing.T) {
	configs := []*domain.AutomationConfig{followUpConfig(3, true)}
	leads := []*domain.Lead{lead("lead-42", domain.LeadStageContacted, daysAgo(7))}

	got := Generate(configs, leads, nil, now)
	if len(got) != 1 {
		t.Fatalf("Generate() returned %d alerts, want 1", len(got))
	}

	alert := got[0]
	if alert.ID != "followup-lead-42" {
		t.Errorf("ID = %v, want followup-lead-42", alert.ID)
	}
	if alert.DaysSince != 7 {
		t.Errorf("DaysSince = %d, want 7", alert.DaysSince)
	}
	if alert.Priority != domain.PriorityUrgent {
		t.Errorf("Priority = %v, want urgent", alert.Priority)
	}
}

// TestGenerate_ProposalBelowThreshold verifies the reference scenario:
// proposal sent 5 days ago with threshold 7 produces no alert
func TestGenerate_ProposalBelowThreshold(t *testing.T) {
	configs := []*domain.AutomationConfig{proposalConfig(7, true)}
	sentAt := daysAgo(5)
	proposals := []*domain.Proposal{proposal("p1", domain.ProposalStatusSent, &sentAt)}

	got := Generate(configs, nil, proposals, now)
	if len(got) != 0 {
		t.Errorf("Generate() returned %d alerts, want 0", len(got))
	}
}

// TestGenerate_ProposalStatusFilter verifies only sent proposals with a
// sentAt timestamp are considered
func TestGenerate_ProposalStatusFilter(t *testing.T) {
	configs := []*domain.AutomationConfig{proposalConfig(3, true)}
	sentAt := daysAgo(10)

	tests := []struct {
		name      string
		proposal  *domain.Proposal
		wantAlert bool
	}{
		{"sent with timestamp", proposal("p1", domain.ProposalStatusSent, &sentAt), true},
		{"draft", proposal("p2", domain.ProposalStatusDraft, &sentAt), false},
		{"accepted", proposal("p3", domain.ProposalStatusAccepted, &sentAt), false},
		{"sent without timestamp", proposal("p4", domain.ProposalStatusSent, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(configs, nil, []*domain.Proposal{tt.proposal}, now)
			if (len(got) == 1) != tt.wantAlert {
				t.Errorf("Generate() returned %d alerts, wantAlert=%v", len(got), tt.wantAlert)
			}
		})
	}
}

// TestGenerate_MalformedTimestampsSkipped verifies that a bad record does not
// abort generation for the rest
func TestGenerate_MalformedTimestampsSkipped(t *testing.T) {
	configs := []*domain.AutomationConfig{followUpConfig(3, true)}
	leads := []*domain.Lead{
		lead("bad", domain.LeadStageContacted, time.Time{}), // zero timestamp
		lead("future", domain.LeadStageContacted, now.Add(time.Hour)),
		lead("good", domain.LeadStageContacted, daysAgo(5)),
	}

	got := Generate(configs, leads, nil, now)
	if len(got) != 1 {
		t.Fatalf("Generate() returned %d alerts, want 1", len(got))
	}
	if got[0].EntityID != "good" {
		t.Errorf("EntityID = %v, want good", got[0].EntityID)
	}
}

// TestPriorityFor verifies the tier boundaries with exact arithmetic
func TestPriorityFor(t *testing.T) {
	tests := []struct {
		name      string
		daysSince int
		threshold int
		want      domain.Priority
	}{
		{"at threshold", 3, 3, domain.PriorityMedium},
		{"below 1.5x", 4, 3, domain.PriorityMedium}, // 4 < 4.5
		{"at 1.5x rounded up", 5, 3, domain.PriorityHigh},
		{"at 2x", 6, 3, domain.PriorityUrgent},
		{"past 2x", 7, 3, domain.PriorityUrgent},
		{"even threshold at 1.5x", 6, 4, domain.PriorityHigh},
		{"even threshold at 2x", 8, 4, domain.PriorityUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := priorityFor(tt.daysSince, tt.threshold); got != tt.want {
				t.Errorf("priorityFor(%d, %d) = %v, want %v", tt.daysSince, tt.threshold, got, tt.want)
			}
		})
	}
}

// TestPriorityFor_Monotonic verifies increasing daysSince never decreases the tier
func TestPriorityFor_Monotonic(t *testing.T) {
	for threshold := 1; threshold <= 10; threshold++ {
		prev := domain.PriorityLow
		for daysSince := threshold; daysSince <= threshold*3; daysSince++ {
			got := priorityFor(daysSince, threshold)
			if got.Rank() < prev.Rank() {
				t.Fatalf("priority decreased from %v to %v at daysSince=%d threshold=%d", prev, got, daysSince, threshold)
			}
			prev = got
		}
	}
}

// TestGenerate_Ordering verifies output is sorted by priority then staleness
func TestGenerate_Ordering(t *testing.T) {
	configs := []*domain.AutomationConfig{followUpConfig(3, true)}
	leads := []*domain.Lead{
		lead("medium", domain.LeadStageContacted, daysAgo(3)),
		lead("urgent", domain.LeadStageContacted, daysAgo(10)),
		lead("high", domain.LeadStageContacted, daysAgo(5)),
	}

	got := Generate(configs, leads, nil, now)
	if len(got) != 3 {
		t.Fatalf("Generate() returned %d alerts, want 3", len(got))
	}

	wantOrder := []string{"urgent", "high", "medium"}
	for i, want := range wantOrder {
		if got[i].EntityID != want {
			t.Errorf("position %d = %v, want %v", i, got[i].EntityID, want)
		}
	}
}

// TestGenerate_BothTypes verifies the two alert types coexist in one pass
func TestGenerate_BothTypes(t *testing.T) {
	configs := []*domain.AutomationConfig{
		followUpConfig(3, true),
		proposalConfig(7, true),
	}
	sentAt := daysAgo(8)
	leads := []*domain.Lead{lead("l1", domain.LeadStageQualified, daysAgo(4))}
	proposals := []*domain.Proposal{proposal("p1", domain.ProposalStatusSent, &sentAt)}

	got := Generate(configs, leads, proposals, now)
	if len(got) != 2 {
		t.Fatalf("Generate() returned %d alerts, want 2", len(got))
	}

	types := map[domain.AlertType]bool{}
	for _, a := range got {
		types[a.Type] = true
	}
	if !types[domain.AlertTypeFollowUp] || !types[domain.AlertTypeProposal] {
		t.Errorf("expected one alert of each type, got %v", types)
	}
}
