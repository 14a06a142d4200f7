// Package policy manages compliance policies and evaluates them against the
// discovered hosts with Open Policy Agent.
//
// A policy may carry its own Rego module defining a deny set. Policies
// without one are checked with a built-in rule that flags open
// vulnerabilities at or above the policy's severity.
package policy

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sentinel/internal/domain"
	"sentinel/internal/repository"
)

// Store is the subset of the discovery store policies touch
type Store interface {
	RecordPolicy(ctx context.Context, p domain.Policy) error
	AppendLog(ctx context.Context, level domain.LogLevel, message string, details map[string]any) (domain.LogEntry, error)
	Hosts(ctx context.Context) ([]domain.Host, error)
}

// Service implements policy CRUD and evaluation
type Service struct {
	repo   repository.PolicyRepository
	store  Store
	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a policy service
func NewService(repo repository.PolicyRepository, store Store) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		tracer: otel.Tracer("sentinel/policy"),
		now:    time.Now,
	}
}

// Create validates and stores a policy. Framework and control ids are free
// text; only the name is required.
func (s *Service) Create(ctx context.Context, p domain.Policy) (domain.Policy, error) {
	const op = "policy.Create"

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Policy{}, domain.Validation(op, "name is required")
	}
	if p.Severity == "" {
		p.Severity = domain.SeverityMedium
	}
	if !p.Severity.Valid() {
		return domain.Policy{}, domain.Validation(op, "invalid severity "+string(p.Severity))
	}
	if strings.TrimSpace(p.Rule) != "" {
		if _, err := compileRule(p.Rule); err != nil {
			return domain.Policy{}, domain.Validation(op, err.Error())
		}
	}
	if p.Controls == nil {
		p.Controls = []string{}
	}

	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()

	if err := s.repo.CreatePolicy(ctx, &p); err != nil {
		return domain.Policy{}, domain.Internal(op, err)
	}
	if err := s.store.RecordPolicy(ctx, p); err != nil {
		// The row must not outlive an uncounted policy
		if delErr := s.repo.DeletePolicy(context.WithoutCancel(ctx), p.ID); delErr != nil {
			log.WithError(delErr).WithField("policy", p.ID).Warn("Failed to roll back policy row")
		}
		return domain.Policy{}, err
	}

	log.WithFields(log.Fields{"policy": p.ID, "framework": p.Framework}).Info("Policy created")
	_, _ = s.store.AppendLog(ctx, domain.LogSuccess, "Policy created: "+p.Name, map[string]any{
		"policyId":  p.ID,
		"framework": p.Framework,
		"controls":  p.Controls,
	})
	return p, nil
}

// Get returns one policy
func (s *Service) Get(ctx context.Context, id string) (domain.Policy, error) {
	p, err := s.repo.GetPolicy(ctx, id)
	if err != nil {
		return domain.Policy{}, err
	}
	return *p, nil
}

// List returns policies, optionally for one framework
func (s *Service) List(ctx context.Context, framework string) ([]domain.Policy, error) {
	return s.repo.ListPolicies(ctx, framework)
}

// Delete removes a policy. The enforced-policies counter is not decremented.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeletePolicy(ctx, id); err != nil {
		return err
	}
	_, _ = s.store.AppendLog(ctx, domain.LogInfo, "Policy deleted", map[string]any{"policyId": id})
	return nil
}

// Evaluate runs a policy's deny rule over every known host
func (s *Service) Evaluate(ctx context.Context, id string) (domain.PolicyEvaluation, error) {
	const op = "policy.Evaluate"

	ctx, span := s.tracer.Start(ctx, "policy.evaluate", trace.WithAttributes(attribute.String("policy.id", id)))
	defer span.End()

	p, err := s.Get(ctx, id)
	if err != nil {
		return domain.PolicyEvaluation{}, err
	}
	hosts, err := s.store.Hosts(ctx)
	if err != nil {
		return domain.PolicyEvaluation{}, err
	}

	rule := p.Rule
	if strings.TrimSpace(rule) == "" {
		rule = defaultRule
	}
	query, err := compileRule(rule)
	if err != nil {
		return domain.PolicyEvaluation{}, domain.Internal(op, err)
	}

	violations, err := evalDeny(ctx, rule, query, map[string]any{
		"hosts":  hosts,
		"policy": p,
	})
	if err != nil {
		span.RecordError(err)
		return domain.PolicyEvaluation{}, domain.Internal(op, err)
	}
	span.SetAttributes(attribute.Int("policy.violations", len(violations)))

	return domain.PolicyEvaluation{
		PolicyID:    p.ID,
		Evaluated:   len(hosts),
		Violations:  violations,
		Compliant:   len(violations) == 0,
		EvaluatedAt: s.now().UTC(),
	}, nil
}
