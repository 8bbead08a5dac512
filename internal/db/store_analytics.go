package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/models"
)

// InsertView records a pixel hit.
func (db *DB) InsertView(ctx context.Context, v *models.SignatureView) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO signature_views (id, signature_id, user_id, ip_hash, user_agent, device_type, email_client, referer, viewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.SignatureID, v.UserID, v.IPHash, v.UserAgent, v.DeviceType, v.EmailClient, v.Referer, v.ViewedAt)
	if err != nil {
		return fmt.Errorf("insert signature view: %w", err)
	}
	return nil
}

// InsertClick records a tracking link click-through.
func (db *DB) InsertClick(ctx context.Context, c *models.LinkClick) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO link_clicks (id, tracking_link_id, signature_id, ip_hash, user_agent, device_type, referer, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.TrackingLinkID, c.SignatureID, c.IPHash, c.UserAgent, c.DeviceType, c.Referer, c.ClickedAt)
	if err != nil {
		return fmt.Errorf("insert link click: %w", err)
	}
	return nil
}

func (db *DB) dailyCounts(ctx context.Context, query string, args ...any) ([]models.DailyCount, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.DailyCount
	for rows.Next() {
		var c models.DailyCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetSignatureAnalytics aggregates views and clicks for one signature since
// the given time. Unique viewers are counted by distinct IP hash.
func (db *DB) GetSignatureAnalytics(ctx context.Context, signatureID uuid.UUID, since time.Time) (*models.SignatureAnalytics, error) {
	a := &models.SignatureAnalytics{SignatureID: signatureID}

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT ip_hash) FILTER (WHERE ip_hash <> '')
		FROM signature_views
		WHERE signature_id = $1 AND viewed_at >= $2
	`, signatureID, since).Scan(&a.TotalViews, &a.UniqueViewers)
	if err != nil {
		return nil, fmt.Errorf("count signature views: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM link_clicks
		WHERE signature_id = $1 AND clicked_at >= $2
	`, signatureID, since).Scan(&a.TotalClicks)
	if err != nil {
		return nil, fmt.Errorf("count link clicks: %w", err)
	}

	a.ViewsByDay, err = db.dailyCounts(ctx, `
		SELECT date_trunc('day', viewed_at) AS day, COUNT(*)
		FROM signature_views
		WHERE signature_id = $1 AND viewed_at >= $2
		GROUP BY day ORDER BY day
	`, signatureID, since)
	if err != nil {
		return nil, fmt.Errorf("views by day: %w", err)
	}

	a.ClicksByDay, err = db.dailyCounts(ctx, `
		SELECT date_trunc('day', clicked_at) AS day, COUNT(*)
		FROM link_clicks
		WHERE signature_id = $1 AND clicked_at >= $2
		GROUP BY day ORDER BY day
	`, signatureID, since)
	if err != nil {
		return nil, fmt.Errorf("clicks by day: %w", err)
	}

	a.TopLinks, err = db.topLinks(ctx, `
		SELECT tl.link_type, COUNT(*) AS clicks
		FROM link_clicks lc
		JOIN tracking_links tl ON tl.id = lc.tracking_link_id
		WHERE lc.signature_id = $1 AND lc.clicked_at >= $2
		GROUP BY tl.link_type ORDER BY clicks DESC
	`, signatureID, since)
	if err != nil {
		return nil, fmt.Errorf("top links: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT device_type, COUNT(*)
		FROM signature_views
		WHERE signature_id = $1 AND viewed_at >= $2
		GROUP BY device_type ORDER BY COUNT(*) DESC
	`, signatureID, since)
	if err != nil {
		return nil, fmt.Errorf("device breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d models.DeviceCount
		if err := rows.Scan(&d.DeviceType, &d.Count); err != nil {
			return nil, fmt.Errorf("scan device count: %w", err)
		}
		a.Devices = append(a.Devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	clientRows, err := db.Pool.Query(ctx, `
		SELECT email_client, COUNT(*)
		FROM signature_views
		WHERE signature_id = $1 AND viewed_at >= $2 AND email_client <> ''
		GROUP BY email_client ORDER BY COUNT(*) DESC
	`, signatureID, since)
	if err != nil {
		return nil, fmt.Errorf("email client breakdown: %w", err)
	}
	defer clientRows.Close()
	for clientRows.Next() {
		var c models.EmailClientCount
		if err := clientRows.Scan(&c.EmailClient, &c.Count); err != nil {
			return nil, fmt.Errorf("scan email client count: %w", err)
		}
		a.EmailClients = append(a.EmailClients, c)
	}
	return a, clientRows.Err()
}

func (db *DB) topLinks(ctx context.Context, query string, args ...any) ([]models.LinkTypeCount, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.LinkTypeCount
	for rows.Next() {
		var c models.LinkTypeCount
		if err := rows.Scan(&c.LinkType, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetUserAnalytics aggregates across all of a user's signatures since the
// given time.
func (db *DB) GetUserAnalytics(ctx context.Context, userID uuid.UUID, since time.Time) (*models.UserAnalytics, error) {
	a := &models.UserAnalytics{UserID: userID}

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT v.ip_hash) FILTER (WHERE v.ip_hash <> '')
		FROM signature_views v
		JOIN signatures s ON s.id = v.signature_id
		WHERE s.user_id = $1 AND v.viewed_at >= $2
	`, userID, since).Scan(&a.TotalViews, &a.UniqueViewers)
	if err != nil {
		return nil, fmt.Errorf("count user views: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM link_clicks lc
		JOIN signatures s ON s.id = lc.signature_id
		WHERE s.user_id = $1 AND lc.clicked_at >= $2
	`, userID, since).Scan(&a.TotalClicks)
	if err != nil {
		return nil, fmt.Errorf("count user clicks: %w", err)
	}

	a.ViewsByDay, err = db.dailyCounts(ctx, `
		SELECT date_trunc('day', v.viewed_at) AS day, COUNT(*)
		FROM signature_views v
		JOIN signatures s ON s.id = v.signature_id
		WHERE s.user_id = $1 AND v.viewed_at >= $2
		GROUP BY day ORDER BY day
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("user views by day: %w", err)
	}

	a.TopLinks, err = db.topLinks(ctx, `
		SELECT tl.link_type, COUNT(*) AS clicks
		FROM link_clicks lc
		JOIN tracking_links tl ON tl.id = lc.tracking_link_id
		JOIN signatures s ON s.id = lc.signature_id
		WHERE s.user_id = $1 AND lc.clicked_at >= $2
		GROUP BY tl.link_type ORDER BY clicks DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("user top links: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.name,
		       COUNT(DISTINCT v.id) AS views,
		       COUNT(DISTINCT lc.id) AS clicks
		FROM signatures s
		LEFT JOIN signature_views v ON v.signature_id = s.id AND v.viewed_at >= $2
		LEFT JOIN link_clicks lc ON lc.signature_id = s.id AND lc.clicked_at >= $2
		WHERE s.user_id = $1
		GROUP BY s.id, s.name
		ORDER BY views DESC, s.name
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("signature ranking: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.SignatureRank
		if err := rows.Scan(&r.SignatureID, &r.Name, &r.Views, &r.Clicks); err != nil {
			return nil, fmt.Errorf("scan signature rank: %w", err)
		}
		a.Signatures = append(a.Signatures, r)
	}
	return a, rows.Err()
}

// PruneAnalytics deletes raw view and click rows older than the cutoff and
// returns how many rows were removed.
func (db *DB) PruneAnalytics(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	tag, err := db.Pool.Exec(ctx, `DELETE FROM signature_views WHERE viewed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune signature views: %w", err)
	}
	total += tag.RowsAffected()

	tag, err = db.Pool.Exec(ctx, `DELETE FROM link_clicks WHERE clicked_at < $1`, before)
	if err != nil {
		return total, fmt.Errorf("prune link clicks: %w", err)
	}
	total += tag.RowsAffected()
	return total, nil
}
