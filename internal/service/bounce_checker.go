package service

import (
	"context"

	"github.com/vhvplatform/go-crm-automation-service/internal/repository"
)

// hard bounces within this window suppress the address
const bounceSuppressionDays = 30

// BounceChecker decides whether an address is safe to email
type BounceChecker struct {
	repo *repository.BounceRepository
}

// NewBounceChecker creates a new bounce checker
func NewBounceChecker(repo *repository.BounceRepository) *BounceChecker {
	return &BounceChecker{repo: repo}
}

// IsEmailBounced checks if an email has hard bounced recently
func (bc *BounceChecker) IsEmailBounced(ctx context.Context, email string) (bool, error) {
	bounces, err := bc.repo.FindRecentHardBounces(ctx, email, bounceSuppressionDays)
	if err != nil {
		return false, err
	}

	return len(bounces) > 0, nil
}
