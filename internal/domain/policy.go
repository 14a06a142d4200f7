package domain

import "time"

// Policy is a compliance policy tied to a framework.
// Rule optionally holds a Rego module that defines a deny set.
type Policy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Framework   string    `json:"framework"`
	Description string    `json:"description,omitempty"`
	Controls    []string  `json:"controls,omitempty"`
	Severity    Severity  `json:"severity,omitempty"`
	Enabled     bool      `json:"enabled"`
	Rule        string    `json:"rule,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PolicyEvaluation is the outcome of evaluating a policy rule against hosts
type PolicyEvaluation struct {
	PolicyID    string    `json:"policyId"`
	Evaluated   int       `json:"hostsEvaluated"`
	Violations  []string  `json:"violations"`
	Compliant   bool      `json:"compliant"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}
