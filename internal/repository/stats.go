package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/afftrack/afftrack/internal/model"
)

// CountLinks returns the total number of links, and how many are active.
func (r *Repository) CountLinks(ctx context.Context) (total, active int64, err error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM affiliate_links`

	if err := r.pool.QueryRow(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("failed to count links: %w", err)
	}

	return total, active, nil
}

// SumClickCounts returns the sum of the cached per-link click counters.
// This can legitimately diverge from the click_analytics row count.
func (r *Repository) SumClickCounts(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(click_count), 0) FROM affiliate_links`

	var sum int64
	if err := r.pool.QueryRow(ctx, query).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum click counts: %w", err)
	}

	return sum, nil
}

// TopLink returns the link with the highest click count, ties broken by id
// for a deterministic result. Returns nil when no links exist.
func (r *Repository) TopLink(ctx context.Context) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links ORDER BY click_count DESC, id ASC LIMIT 1`

	link, err := scanLink(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get top link: %w", err)
	}

	return link, nil
}
