package domain

import "time"

// CRMEventType represents an upstream change event from the main CRM backend
type CRMEventType string

const (
	EventLeadCreated      CRMEventType = "crm.lead.created"
	EventLeadUpdated      CRMEventType = "crm.lead.updated"
	EventLeadStageChanged CRMEventType = "crm.lead.stage_changed"
	EventProposalSent     CRMEventType = "crm.proposal.sent"
	EventProposalUpdated  CRMEventType = "crm.proposal.updated"
	EventConfigChanged    CRMEventType = "crm.automation.config_changed"
)

// CRMEvent is a change notification consumed from RabbitMQ. Any of these
// invalidates the current alert snapshot and triggers a regeneration.
type CRMEvent struct {
	Type       CRMEventType   `json:"type"`
	LeadID     string         `json:"lead_id,omitempty"`
	ProposalID string         `json:"proposal_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
