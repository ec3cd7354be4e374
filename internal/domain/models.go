package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertType represents the kind of automation alert
type AlertType string

const (
	AlertTypeFollowUp AlertType = "followUp"
	AlertTypeProposal AlertType = "proposal"
)

// Priority represents an alert or reminder priority tier
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank returns a sortable weight, higher is more urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// LeadStage represents the pipeline stage of a lead
type LeadStage string

const (
	LeadStageNew       LeadStage = "New"
	LeadStageContacted LeadStage = "Contacted"
	LeadStageQualified LeadStage = "Qualified"
	LeadStageProposal  LeadStage = "Proposal"
	LeadStageWon       LeadStage = "Won"
	LeadStageLost      LeadStage = "Lost"
	LeadStageOnboarded LeadStage = "Onboarded"
)

// IsTerminal reports whether a lead in this stage no longer needs follow-up
func (s LeadStage) IsTerminal() bool {
	switch s {
	case LeadStageWon, LeadStageLost, LeadStageOnboarded:
		return true
	}
	return false
}

// ProposalStatus represents the status of a proposal
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "Draft"
	ProposalStatusSent     ProposalStatus = "Sent"
	ProposalStatusAccepted ProposalStatus = "Accepted"
	ProposalStatusRejected ProposalStatus = "Rejected"
)

// Lead is a read-only snapshot of a lead document owned by the main CRM backend
type Lead struct {
	ID           string    `json:"id" bson:"_id"`
	CompanyName  string    `json:"company_name" bson:"company_name"`
	ContactName  string    `json:"contact_name" bson:"contact_name"`
	Stage        LeadStage `json:"stage" bson:"stage"`
	AssigneeID   string    `json:"assignee_id" bson:"assignee_id"`
	AssigneeName string    `json:"assignee_name" bson:"assignee_name"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Proposal is a read-only snapshot of a proposal document owned by the main CRM backend
type Proposal struct {
	ID          string         `json:"id" bson:"_id"`
	LeadID      string         `json:"lead_id" bson:"lead_id"`
	CompanyName string         `json:"company_name" bson:"company_name"`
	ContactName string         `json:"contact_name" bson:"contact_name"`
	Status      ProposalStatus `json:"status" bson:"status"`
	OwnerID     string         `json:"owner_id" bson:"owner_id"`
	OwnerName   string         `json:"owner_name" bson:"owner_name"`
	SentAt      *time.Time     `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
}

// AutomationConfig holds the alerting threshold for one alert type.
// At most one config exists per type, enforced by a unique index and
// upsert-by-type writes. Configs are disabled, never deleted.
type AutomationConfig struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type          AlertType          `json:"type" bson:"type"`
	DaysThreshold int                `json:"days_threshold" bson:"days_threshold"`
	Enabled       bool               `json:"enabled" bson:"enabled"`
	CreatedBy     string             `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// AutomationAlert is derived from lead/proposal staleness and never stored.
// The ID is deterministic ("followup-<leadID>", "proposal-<proposalID>") so
// repeated generation yields stable identities for the same condition, which
// is what suppression records key on.
type AutomationAlert struct {
	ID           string    `json:"id"`
	Type         AlertType `json:"type"`
	EntityID     string    `json:"entity_id"`
	CompanyName  string    `json:"company_name"`
	ContactName  string    `json:"contact_name"`
	AssigneeID   string    `json:"assignee_id"`
	AssigneeName string    `json:"assignee_name"`
	DaysSince    int       `json:"days_since"`
	Threshold    int       `json:"threshold"`
	Priority     Priority  `json:"priority"`
	LastActivity time.Time `json:"last_activity"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// FollowUpAlertID derives the deterministic alert id for a lead
func FollowUpAlertID(leadID string) string {
	return fmt.Sprintf("followup-%s", leadID)
}

// ProposalAlertID derives the deterministic alert id for a proposal
func ProposalAlertID(proposalID string) string {
	return fmt.Sprintf("proposal-%s", proposalID)
}

// SuppressionReason records why an alert is hidden
type SuppressionReason string

const (
	SuppressionDismissed SuppressionReason = "dismissed"
	SuppressionSnoozed   SuppressionReason = "snoozed"
)

// AlertSuppression is a persisted dismiss/snooze marker keyed by the
// deterministic alert id, so regeneration respects prior dismissals.
type AlertSuppression struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AlertID         string             `json:"alert_id" bson:"alert_id"`
	Reason          SuppressionReason  `json:"reason" bson:"reason"`
	LastActivity    time.Time          `json:"last_activity" bson:"last_activity"`
	SuppressedUntil *time.Time         `json:"suppressed_until,omitempty" bson:"suppressed_until,omitempty"`
	ActorID         string             `json:"actor_id" bson:"actor_id"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
}

// Suppresses reports whether this marker hides the given alert at time now.
// A dismissal applies for as long as the alert's underlying activity
// timestamp is unchanged; new activity resets the condition and the marker
// no longer matches. A snooze applies until suppressed_until passes.
func (s *AlertSuppression) Suppresses(alert *AutomationAlert, now time.Time) bool {
	if s.AlertID != alert.ID {
		return false
	}

	switch s.Reason {
	case SuppressionDismissed:
		return s.LastActivity.Equal(alert.LastActivity)
	case SuppressionSnoozed:
		return s.SuppressedUntil != nil && now.Before(*s.SuppressedUntil)
	}
	return false
}

// Role represents the actor's CRM role
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
)

// Elevated reports whether the role may manage configs and see all alerts
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleManager
}

// Actor is the current caller's identity, supplied by the policy collaborator
type Actor struct {
	ID   string
	Role Role
}
