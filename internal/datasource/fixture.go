package datasource

import (
	"context"
	"time"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
)

// FixtureSource serves a small in-memory dataset so the service can be run
// and demoed without a populated CRM database
type FixtureSource struct {
	leads     []*domain.Lead
	proposals []*domain.Proposal
}

// NewFixtureSource builds the demo dataset relative to time now, so the
// staleness windows stay meaningful regardless of when the demo runs
func NewFixtureSource(now time.Time) *FixtureSource {
	sentFive := now.AddDate(0, 0, -5)
	sentNine := now.AddDate(0, 0, -9)

	return &FixtureSource{
		leads: []*domain.Lead{
			{
				ID:           "lead-1001",
				CompanyName:  "Acme Logistics",
				ContactName:  "Dana Wheeler",
				Stage:        domain.LeadStageContacted,
				AssigneeID:   "user-2",
				AssigneeName: "Sam Alvarez",
				UpdatedAt:    now.AddDate(0, 0, -4),
			},
			{
				ID:           "lead-1002",
				CompanyName:  "Brightline Media",
				ContactName:  "Jordan Park",
				Stage:        domain.LeadStageQualified,
				AssigneeID:   "user-3",
				AssigneeName: "Priya Nair",
				UpdatedAt:    now.AddDate(0, 0, -8),
			},
			{
				ID:           "lead-1003",
				CompanyName:  "Crestview Dental",
				ContactName:  "Morgan Lee",
				Stage:        domain.LeadStageWon,
				AssigneeID:   "user-2",
				AssigneeName: "Sam Alvarez",
				UpdatedAt:    now.AddDate(0, 0, -30),
			},
			{
				ID:           "lead-1004",
				CompanyName:  "Delta Foods",
				ContactName:  "Riley Chen",
				Stage:        domain.LeadStageNew,
				AssigneeID:   "user-3",
				AssigneeName: "Priya Nair",
				UpdatedAt:    now.AddDate(0, 0, -1),
			},
		},
		proposals: []*domain.Proposal{
			{
				ID:          "prop-2001",
				LeadID:      "lead-1001",
				CompanyName: "Acme Logistics",
				ContactName: "Dana Wheeler",
				Status:      domain.ProposalStatusSent,
				OwnerID:     "user-2",
				OwnerName:   "Sam Alvarez",
				SentAt:      &sentNine,
			},
			{
				ID:          "prop-2002",
				LeadID:      "lead-1002",
				CompanyName: "Brightline Media",
				ContactName: "Jordan Park",
				Status:      domain.ProposalStatusSent,
				OwnerID:     "user-3",
				OwnerName:   "Priya Nair",
				SentAt:      &sentFive,
			},
			{
				ID:          "prop-2003",
				LeadID:      "lead-1003",
				CompanyName: "Crestview Dental",
				ContactName: "Morgan Lee",
				Status:      domain.ProposalStatusAccepted,
				OwnerID:     "user-2",
				OwnerName:   "Sam Alvarez",
			},
		},
	}
}

// Leads returns the demo leads
func (s *FixtureSource) Leads(ctx context.Context) ([]*domain.Lead, error) {
	return s.leads, nil
}

// Proposals returns the demo proposals
func (s *FixtureSource) Proposals(ctx context.Context) ([]*domain.Proposal, error) {
	return s.proposals, nil
}
