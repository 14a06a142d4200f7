package repository

import (
	"context"

	"sentinel/internal/domain"
)

// PolicyRepository stores compliance policies
type PolicyRepository interface {
	CreatePolicy(ctx context.Context, p *domain.Policy) error
	GetPolicy(ctx context.Context, id string) (*domain.Policy, error)
	// ListPolicies returns policies oldest first; an empty framework matches all
	ListPolicies(ctx context.Context, framework string) ([]domain.Policy, error)
	DeletePolicy(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
