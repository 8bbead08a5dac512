package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/ironcrest/sigforge/internal/render"
	"github.com/jackc/pgx/v5"
)

// CreateSignature inserts a new signature row.
func (db *DB) CreateSignature(ctx context.Context, sig *models.Signature) error {
	configBytes, err := json.Marshal(sig.Config)
	if err != nil {
		return fmt.Errorf("marshal signature config: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO signatures (id, user_id, name, template_key, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sig.ID, sig.UserID, sig.Name, sig.TemplateKey, configBytes, sig.CreatedAt, sig.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create signature: %w", err)
	}
	return nil
}

// GetSignature returns a signature by ID, or nil when it does not exist.
func (db *DB) GetSignature(ctx context.Context, id uuid.UUID) (*models.Signature, error) {
	var sig models.Signature
	var configBytes []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, template_key, config, created_at, updated_at
		FROM signatures
		WHERE id = $1
	`, id).Scan(&sig.ID, &sig.UserID, &sig.Name, &sig.TemplateKey, &configBytes, &sig.CreatedAt, &sig.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get signature: %w", err)
	}

	if err := json.Unmarshal(configBytes, &sig.Config); err != nil {
		return nil, fmt.Errorf("unmarshal signature config: %w", err)
	}
	return &sig, nil
}

// ListSignaturesByUser returns all of a user's signatures, newest first.
func (db *DB) ListSignaturesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Signature, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, name, template_key, config, created_at, updated_at
		FROM signatures
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	defer rows.Close()

	var sigs []*models.Signature
	for rows.Next() {
		var sig models.Signature
		var configBytes []byte
		if err := rows.Scan(&sig.ID, &sig.UserID, &sig.Name, &sig.TemplateKey, &configBytes, &sig.CreatedAt, &sig.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		if err := json.Unmarshal(configBytes, &sig.Config); err != nil {
			db.logger.Warn().Err(err).Str("signature_id", sig.ID.String()).Msg("failed to parse signature config")
			sig.Config = render.SignatureConfig{}
		}
		sigs = append(sigs, &sig)
	}
	return sigs, rows.Err()
}

// UpdateSignature persists name, template key, and config for a signature.
func (db *DB) UpdateSignature(ctx context.Context, sig *models.Signature) error {
	configBytes, err := json.Marshal(sig.Config)
	if err != nil {
		return fmt.Errorf("marshal signature config: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE signatures
		SET name = $2, template_key = $3, config = $4, updated_at = $5
		WHERE id = $1
	`, sig.ID, sig.Name, sig.TemplateKey, configBytes, sig.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update signature: not found")
	}
	return nil
}

// DeleteSignature removes a signature and, via cascade, its tracking links
// and analytics rows.
func (db *DB) DeleteSignature(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM signatures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete signature: not found")
	}
	return nil
}
