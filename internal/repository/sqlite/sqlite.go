package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sentinel/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.PolicyRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens the database at dsn and migrates the schema.
// In-memory databases vanish when their last connection closes, so the
// pool is pinned to a single connection.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		framework TEXT,
		description TEXT,
		controls JSON,
		severity TEXT,
		enabled INTEGER NOT NULL DEFAULT 1,
		rule TEXT,
		created_at TEXT NOT NULL,
		seq INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_policies_framework ON policies(framework);
	`
	_, err := r.db.Exec(schema)
	return err
}

// CreatePolicy inserts a new policy
func (r *Repository) CreatePolicy(ctx context.Context, p *domain.Policy) error {
	controls, err := marshalToNull(p.Controls)
	if err != nil {
		return fmt.Errorf("failed to marshal controls: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO policies (`+policyColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM policies))
	`, p.ID, p.Name, stringToNull(p.Framework), stringToNull(p.Description), controls,
		stringToNull(string(p.Severity)), boolToInt(p.Enabled), stringToNull(p.Rule),
		p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert policy: %w", err)
	}
	return nil
}

// GetPolicy returns one policy
func (r *Repository) GetPolicy(ctx context.Context, id string) (*domain.Policy, error) {
	var row policyRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = ?`, id,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("sqlite.GetPolicy", "policy "+id+" not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query policy: %w", err)
	}
	return row.toDomain()
}

// ListPolicies returns policies in creation order
func (r *Repository) ListPolicies(ctx context.Context, framework string) ([]domain.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies`
	var args []any
	if framework != "" {
		query += ` WHERE framework = ?`
		args = append(args, framework)
	}
	query += ` ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	policies := make([]domain.Policy, 0)
	for rows.Next() {
		var row policyRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		policies = append(policies, *p)
	}
	return policies, rows.Err()
}

// DeletePolicy removes a policy
func (r *Repository) DeletePolicy(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM policies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	if n == 0 {
		return domain.NotFound("sqlite.DeletePolicy", "policy "+id+" not found")
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
