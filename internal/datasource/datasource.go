package datasource

import (
	"context"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
)

// Source supplies the lead and proposal snapshots the alert engine runs
// over. The production source reads the CRM collections; the fixture source
// backs demo mode.
type Source interface {
	Leads(ctx context.Context) ([]*domain.Lead, error)
	Proposals(ctx context.Context) ([]*domain.Proposal, error)
}

// MongoSource reads live CRM data
type MongoSource struct {
	crm *repository.CRMRepository
}

// NewMongoSource creates a source backed by the CRM collections
func NewMongoSource(crm *repository.CRMRepository) *MongoSource {
	return &MongoSource{crm: crm}
}

// Leads returns all lead snapshots
func (s *MongoSource) Leads(ctx context.Context) ([]*domain.Lead, error) {
	return s.crm.FindLeads(ctx)
}

// Proposals returns all proposal snapshots
func (s *MongoSource) Proposals(ctx context.Context) ([]*domain.Proposal, error) {
	return s.crm.FindProposals(ctx)
}
