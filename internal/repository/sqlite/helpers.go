package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sentinel/internal/domain"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals a value to nullable JSON, storing nothing for
// nil or empty slices
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	if s, ok := v.([]string); ok && len(s) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// Column order must match scanArgs
const policyColumns = `id, name, framework, description, controls, severity, enabled, rule, created_at`

// policyRow holds all columns from a policy query for scanning
type policyRow struct {
	ID           string
	Name         string
	Framework    sql.NullString
	Description  sql.NullString
	ControlsJSON sql.NullString
	Severity     sql.NullString
	Enabled      int64
	Rule         sql.NullString
	CreatedAt    string
}

func (r *policyRow) scanArgs() []any {
	return []any{
		&r.ID, &r.Name, &r.Framework, &r.Description, &r.ControlsJSON,
		&r.Severity, &r.Enabled, &r.Rule, &r.CreatedAt,
	}
}

func (r *policyRow) toDomain() (*domain.Policy, error) {
	p := &domain.Policy{
		ID:          r.ID,
		Name:        r.Name,
		Framework:   nullToString(r.Framework),
		Description: nullToString(r.Description),
		Controls:    []string{},
		Severity:    domain.Severity(nullToString(r.Severity)),
		Enabled:     r.Enabled != 0,
		Rule:        nullToString(r.Rule),
	}
	if err := unmarshalJSONField(r.ControlsJSON, &p.Controls); err != nil {
		return nil, fmt.Errorf("failed to unmarshal controls: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	p.CreatedAt = created
	return p, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
