package db

import (
	"context"
	"fmt"

	"github.com/ironcrest/sigforge/internal/models"
	"github.com/jackc/pgx/v5"
)

// ListTemplates returns catalog entries in sort order. When activeOnly is
// set, disabled entries are skipped.
func (db *DB) ListTemplates(ctx context.Context, activeOnly bool) ([]*models.Template, error) {
	query := `
		SELECT key, name, description, premium, sort_order, active, created_at, updated_at
		FROM templates
	`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY sort_order, key`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var tmpls []*models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.Key, &t.Name, &t.Description, &t.Premium, &t.SortOrder, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		tmpls = append(tmpls, &t)
	}
	return tmpls, rows.Err()
}

// GetTemplate returns one catalog entry by key, or nil when it does not
// exist.
func (db *DB) GetTemplate(ctx context.Context, key string) (*models.Template, error) {
	var t models.Template
	err := db.Pool.QueryRow(ctx, `
		SELECT key, name, description, premium, sort_order, active, created_at, updated_at
		FROM templates
		WHERE key = $1
	`, key).Scan(&t.Key, &t.Name, &t.Description, &t.Premium, &t.SortOrder, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

// UpsertTemplate inserts or refreshes a catalog entry. Used by the seeder;
// the key is the conflict target so reseeding is idempotent.
func (db *DB) UpsertTemplate(ctx context.Context, t *models.Template) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO templates (key, name, description, premium, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    premium = EXCLUDED.premium,
		    sort_order = EXCLUDED.sort_order,
		    active = EXCLUDED.active,
		    updated_at = NOW()
	`, t.Key, t.Name, t.Description, t.Premium, t.SortOrder, t.Active)
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}
