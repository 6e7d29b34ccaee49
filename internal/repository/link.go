package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/afftrack/afftrack/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound = errors.New("link not found")
	ErrSlugExists   = errors.New("slug already exists")
)

const linkColumns = `id, slug, title, description, destination_url, product_image, category,
	is_active, click_count, tags, trust_badges, price, original_price, discount,
	redirect_type, auto_redirect, created_at, updated_at`

// CreateLink inserts a new link into the database.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO affiliate_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Slug,
		link.Title,
		link.Description,
		link.Destination,
		link.ProductImage,
		link.Category,
		link.Active,
		link.ClickCount,
		marshalStringList(link.Tags),
		marshalStringList(link.TrustBadges),
		link.Price,
		link.OriginalPrice,
		link.Discount,
		string(link.RedirectType),
		link.AutoRedirect,
		link.CreatedAt,
		link.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkByID retrieves a link by its ID.
func (r *Repository) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links WHERE id = $1`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return link, nil
}

// GetLinkBySlug retrieves a link by its slug.
// This is the hot path for redirects.
func (r *Repository) GetLinkBySlug(ctx context.Context, slug string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links WHERE slug = $1`

	link, err := scanLink(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by slug: %w", err)
	}

	return link, nil
}

// ListLinks retrieves all links ordered by creation time, newest first.
func (r *Repository) ListLinks(ctx context.Context) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM affiliate_links ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := make([]*model.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// LinkPatch is a sparse set of link fields for a partial update.
// Nil pointers leave the stored value untouched.
type LinkPatch struct {
	Slug          *string
	Title         *string
	Description   *string
	Destination   *string
	ProductImage  *string
	Category      *string
	Tags          *[]string
	TrustBadges   *[]string
	Price         *string
	OriginalPrice *string
	Discount      *string
	Active        *bool
	RedirectType  *model.RedirectType
	AutoRedirect  *bool
}

// IsEmpty reports whether the patch carries no field changes.
func (p *LinkPatch) IsEmpty() bool {
	return p.Slug == nil && p.Title == nil && p.Description == nil &&
		p.Destination == nil && p.ProductImage == nil && p.Category == nil &&
		p.Tags == nil && p.TrustBadges == nil && p.Price == nil &&
		p.OriginalPrice == nil && p.Discount == nil && p.Active == nil &&
		p.RedirectType == nil && p.AutoRedirect == nil
}

// buildUpdate emits the SET clause and arguments for a patch. Column names
// come only from this fixed table, never from request input. updated_at is
// always refreshed; $1 is reserved for the link id.
func (p *LinkPatch) buildUpdate(now time.Time) (string, []any) {
	set := "updated_at = $2"
	args := []any{now}
	idx := 3

	add := func(column string, value any) {
		set += fmt.Sprintf(", %s = $%d", column, idx)
		args = append(args, value)
		idx++
	}

	if p.Slug != nil {
		add("slug", *p.Slug)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Destination != nil {
		add("destination_url", *p.Destination)
	}
	if p.ProductImage != nil {
		add("product_image", *p.ProductImage)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Tags != nil {
		add("tags", marshalStringList(*p.Tags))
	}
	if p.TrustBadges != nil {
		add("trust_badges", marshalStringList(*p.TrustBadges))
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.OriginalPrice != nil {
		add("original_price", *p.OriginalPrice)
	}
	if p.Discount != nil {
		add("discount", *p.Discount)
	}
	if p.Active != nil {
		add("is_active", *p.Active)
	}
	if p.RedirectType != nil {
		add("redirect_type", string(*p.RedirectType))
	}
	if p.AutoRedirect != nil {
		add("auto_redirect", *p.AutoRedirect)
	}

	return set, args
}

// UpdateLink applies a partial update to a link.
// Returns the number of rows changed; zero rows yields ErrLinkNotFound.
func (r *Repository) UpdateLink(ctx context.Context, id string, patch *LinkPatch) (int64, error) {
	set, args := patch.buildUpdate(time.Now().UTC())
	query := "UPDATE affiliate_links SET " + set + " WHERE id = $1"

	result, err := r.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrSlugExists
		}
		return 0, fmt.Errorf("failed to update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return 0, ErrLinkNotFound
	}

	return result.RowsAffected(), nil
}

// DeleteLink removes a link by ID.
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	query := `DELETE FROM affiliate_links WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// IncrementClickCount atomically increments the click counter for a link.
// The increment is expressed relative to the stored value so concurrent
// invocations never lose updates to each other.
func (r *Repository) IncrementClickCount(ctx context.Context, id string) error {
	query := `
		UPDATE affiliate_links
		SET click_count = click_count + 1, updated_at = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// scanLink scans a single row into a Link model.
func scanLink(row pgx.Row) (*model.Link, error) {
	var (
		link         model.Link
		tagsJSON     []byte
		badgesJSON   []byte
		redirectType string
	)

	err := row.Scan(
		&link.ID,
		&link.Slug,
		&link.Title,
		&link.Description,
		&link.Destination,
		&link.ProductImage,
		&link.Category,
		&link.Active,
		&link.ClickCount,
		&tagsJSON,
		&badgesJSON,
		&link.Price,
		&link.OriginalPrice,
		&link.Discount,
		&redirectType,
		&link.AutoRedirect,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	link.RedirectType = model.RedirectType(redirectType)
	link.Tags = unmarshalStringList(tagsJSON)
	link.TrustBadges = unmarshalStringList(badgesJSON)

	return &link, nil
}

// marshalStringList serializes a list for a JSONB column.
// Nil lists are stored as empty arrays so reads never surface null.
func marshalStringList(list []string) []byte {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return data
}

// unmarshalStringList parses a JSONB column back into an ordered list,
// defaulting to an empty list on NULL or malformed content.
func unmarshalStringList(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// PostgreSQL error code 23505 is unique_violation
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
