package repository

import (
	"context"

	"github.com/vhvplatform/go-crm-automation-service/internal/domain"
	"github.com/vhvplatform/go-crm-automation-service/internal/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	leadsCollection     = "leads"
	proposalsCollection = "proposals"
)

// CRMRepository reads lead and proposal snapshots owned by the main CRM
// backend. This service never writes to these collections.
type CRMRepository struct {
	client *mongodb.MongoClient
}

// NewCRMRepository creates a new CRM read repository
func NewCRMRepository(client *mongodb.MongoClient) *CRMRepository {
	return &CRMRepository{client: client}
}

// FindLeads retrieves all leads
func (r *CRMRepository) FindLeads(ctx context.Context) ([]*domain.Lead, error) {
	cursor, err := r.client.Collection(leadsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []*domain.Lead
	if err = cursor.All(ctx, &leads); err != nil {
		return nil, err
	}

	return leads, nil
}

// FindProposals retrieves all proposals
func (r *CRMRepository) FindProposals(ctx context.Context) ([]*domain.Proposal, error) {
	cursor, err := r.client.Collection(proposalsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var proposals []*domain.Proposal
	if err = cursor.All(ctx, &proposals); err != nil {
		return nil, err
	}

	return proposals, nil
}

// FindLeadByID retrieves a single lead snapshot
func (r *CRMRepository) FindLeadByID(ctx context.Context, id string) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.client.Collection(leadsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&lead)
	if err != nil {
		return nil, err
	}

	return &lead, nil
}
