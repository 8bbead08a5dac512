package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ironcrest/sigforge/internal/models"
)

// InsertActivityEvent persists one activity feed entry.
func (db *DB) InsertActivityEvent(ctx context.Context, e *models.ActivityEvent) error {
	metadata, err := e.MetadataJSON()
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO activity_events (id, type, category, title, description, user_id, signature_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Type, e.Category, e.Title, e.Description, e.UserID, e.SignatureID, metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity event: %w", err)
	}
	return nil
}

// ListActivityEvents returns events matching the filter, newest first.
func (db *DB) ListActivityEvents(ctx context.Context, filter models.ActivityEventFilter) ([]*models.ActivityEvent, error) {
	query := `
		SELECT id, type, category, title, description, user_id, signature_id, metadata, created_at
		FROM activity_events
		WHERE 1=1
	`
	args := []any{}
	idx := 1

	addArg := func(clause string, value any) {
		query += fmt.Sprintf(" AND %s = $%d", clause, idx)
		args = append(args, value)
		idx++
	}

	if filter.Category != nil {
		addArg("category", *filter.Category)
	}
	if filter.Type != nil {
		addArg("type", *filter.Type)
	}
	if filter.UserID != nil {
		addArg("user_id", *filter.UserID)
	}
	if filter.SignatureID != nil {
		addArg("signature_id", *filter.SignatureID)
	}
	if filter.StartTime != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filter.StartTime)
		idx++
	}
	if filter.EndTime != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filter.EndTime)
		idx++
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT $%d", idx)
	args = append(args, limit)
	idx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	var events []*models.ActivityEvent
	for rows.Next() {
		var e models.ActivityEvent
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.Category, &e.Title, &e.Description, &e.UserID, &e.SignatureID, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		if err := e.ParseMetadata(metadata); err != nil {
			db.logger.Warn().Err(err).Str("event_id", e.ID.String()).Msg("failed to parse event metadata")
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// PruneActivityEvents deletes feed entries older than the cutoff.
func (db *DB) PruneActivityEvents(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM activity_events WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune activity events: %w", err)
	}
	return tag.RowsAffected(), nil
}
