package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const trackingLinkColumns = `id, signature_id, user_id, short_code, link_type, destination, active, expires_at, created_at`

func scanTrackingLink(row pgx.Row) (*models.TrackingLink, error) {
	var l models.TrackingLink
	err := row.Scan(&l.ID, &l.SignatureID, &l.UserID, &l.ShortCode, &l.LinkType, &l.Destination, &l.Active, &l.ExpiresAt, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateTrackingLink inserts a tracking link. A short code collision is
// reported as ErrDuplicateShortCode so callers can regenerate and retry.
func (db *DB) CreateTrackingLink(ctx context.Context, link *models.TrackingLink) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO tracking_links (id, signature_id, user_id, short_code, link_type, destination, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, link.ID, link.SignatureID, link.UserID, link.ShortCode, link.LinkType, link.Destination, link.Active, link.ExpiresAt, link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateShortCode
		}
		return fmt.Errorf("create tracking link: %w", err)
	}
	return nil
}

// GetTrackingLinkByCode returns the link for a short code, or nil when no
// such code exists.
func (db *DB) GetTrackingLinkByCode(ctx context.Context, code string) (*models.TrackingLink, error) {
	link, err := scanTrackingLink(db.Pool.QueryRow(ctx, `
		SELECT `+trackingLinkColumns+`
		FROM tracking_links
		WHERE short_code = $1
	`, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tracking link by code: %w", err)
	}
	return link, nil
}

// GetActiveLink returns the live link for one signature slot, or nil.
func (db *DB) GetActiveLink(ctx context.Context, signatureID uuid.UUID, linkType string) (*models.TrackingLink, error) {
	link, err := scanTrackingLink(db.Pool.QueryRow(ctx, `
		SELECT `+trackingLinkColumns+`
		FROM tracking_links
		WHERE signature_id = $1 AND link_type = $2 AND active
	`, signatureID, linkType))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active tracking link: %w", err)
	}
	return link, nil
}

// ListActiveLinks returns all live links for a signature.
func (db *DB) ListActiveLinks(ctx context.Context, signatureID uuid.UUID) ([]*models.TrackingLink, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+trackingLinkColumns+`
		FROM tracking_links
		WHERE signature_id = $1 AND active
		ORDER BY link_type
	`, signatureID)
	if err != nil {
		return nil, fmt.Errorf("list active tracking links: %w", err)
	}
	defer rows.Close()

	var links []*models.TrackingLink
	for rows.Next() {
		link, err := scanTrackingLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracking link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// DeactivateLink retires a single link.
func (db *DB) DeactivateLink(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `UPDATE tracking_links SET active = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deactivate tracking link: %w", err)
	}
	return nil
}

// DeactivateExpiredLinks retires every active link whose expiry has passed
// and returns how many were affected. Run periodically by the maintenance
// scheduler.
func (db *DB) DeactivateExpiredLinks(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE tracking_links
		SET active = FALSE
		WHERE active AND expires_at IS NOT NULL AND expires_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired tracking links: %w", err)
	}
	return tag.RowsAffected(), nil
}
