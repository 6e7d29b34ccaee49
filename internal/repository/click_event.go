package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/afftrack/afftrack/internal/model"
)

// MaxClickListLimit bounds click listings against unbounded scans.
const MaxClickListLimit = 1000

// InsertClickEvent appends one click event to the log.
func (r *Repository) InsertClickEvent(ctx context.Context, event *model.ClickEvent) error {
	query := `
		INSERT INTO click_analytics (id, link_id, ts, user_agent, referrer, ip_address, device, converted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.LinkID,
		event.Timestamp,
		nullableString(event.UserAgent),
		nullableString(event.Referrer),
		nullableString(event.IPAddress),
		nullableString(event.Device),
		event.Converted,
	)
	if err != nil {
		return fmt.Errorf("failed to insert click event: %w", err)
	}

	return nil
}

// ListClickEvents returns the most recent click events, newest first,
// optionally filtered by link ID. Capped at MaxClickListLimit rows.
func (r *Repository) ListClickEvents(ctx context.Context, linkID string, limit int) ([]*model.ClickEvent, error) {
	if limit <= 0 || limit > MaxClickListLimit {
		limit = MaxClickListLimit
	}

	query := `
		SELECT id, link_id, ts, COALESCE(user_agent, ''), COALESCE(referrer, ''),
			   COALESCE(ip_address, ''), COALESCE(device, ''), converted
		FROM click_analytics
		WHERE ($1 = '' OR link_id = $1)
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list click events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.ClickEvent, 0)
	for rows.Next() {
		var event model.ClickEvent
		err := rows.Scan(
			&event.ID,
			&event.LinkID,
			&event.Timestamp,
			&event.UserAgent,
			&event.Referrer,
			&event.IPAddress,
			&event.Device,
			&event.Converted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan click event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click events: %w", err)
	}

	return events, nil
}

// CountClickEventsSince counts events recorded at or after the given time.
// This reads the event log, not the cached per-link counters.
func (r *Repository) CountClickEventsSince(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM click_analytics WHERE ts >= $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count click events: %w", err)
	}

	return count, nil
}

// nullableString returns nil for empty strings.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
