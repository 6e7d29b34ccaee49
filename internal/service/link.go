// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/afftrack/afftrack/internal/cache"
	"github.com/afftrack/afftrack/internal/metrics"
	"github.com/afftrack/afftrack/internal/model"
	"github.com/afftrack/afftrack/internal/repository"
)

// Service errors.
var (
	ErrInvalidDestination  = errors.New("invalid destination URL")
	ErrInvalidSlug         = errors.New("invalid slug format")
	ErrSlugExists          = errors.New("slug already exists")
	ErrLinkNotFound        = errors.New("link not found")
	ErrLinkInactive        = errors.New("link is inactive")
	ErrInvalidRedirectType = errors.New("invalid redirect type")
	ErrURLTooLong          = errors.New("destination URL too long")
)

// Slug validation regex: 1-100 chars, lowercase alphanumeric + hyphen.
var slugRegex = regexp.MustCompile(`^[a-z0-9-]{1,100}$`)

const maxDestinationLength = 2048

// LinkService handles link lifecycle business logic.
type LinkService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewLinkService creates a new LinkService.
func NewLinkService(repo *repository.Repository, cache *cache.Cache, recorder metrics.Recorder) *LinkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LinkService{
		repo:    repo,
		cache:   cache,
		metrics: recorder,
	}
}

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	Slug        string
	Title       string
	Description string
	Destination string

	ProductImage *string
	Category     string
	Tags         []string
	TrustBadges  []string

	Price         *string
	OriginalPrice *string
	Discount      *string

	Active       *bool
	RedirectType string
	AutoRedirect *bool
}

// CreateLink creates a new affiliate link.
func (s *LinkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if !slugRegex.MatchString(input.Slug) {
		return nil, ErrInvalidSlug
	}

	if err := s.validateDestination(input.Destination); err != nil {
		return nil, err
	}

	// Redirect type defaults to the landing page flow
	redirectType := model.RedirectLanding
	if input.RedirectType != "" {
		redirectType = model.RedirectType(input.RedirectType)
		if !redirectType.IsValid() {
			return nil, ErrInvalidRedirectType
		}
	}

	// New links are active and auto-redirecting unless stated otherwise
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	autoRedirect := true
	if input.AutoRedirect != nil {
		autoRedirect = *input.AutoRedirect
	}

	now := time.Now().UTC()
	link := &model.Link{
		ID:            ulid.Make().String(),
		Slug:          input.Slug,
		Title:         input.Title,
		Description:   input.Description,
		Destination:   input.Destination,
		ProductImage:  input.ProductImage,
		Category:      input.Category,
		Tags:          normalizeList(input.Tags),
		TrustBadges:   normalizeList(input.TrustBadges),
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Discount:      input.Discount,
		Active:        active,
		RedirectType:  redirectType,
		AutoRedirect:  autoRedirect,
		ClickCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.metrics.IncLinkCreated()

	return link, nil
}

// GetLink retrieves a link by ID.
func (s *LinkService) GetLink(ctx context.Context, id string) (*model.Link, error) {
	link, err := s.repo.GetLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	return link, nil
}

// GetLinkBySlug retrieves a link by slug.
func (s *LinkService) GetLinkBySlug(ctx context.Context, slug string) (*model.Link, error) {
	link, err := s.repo.GetLinkBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	return link, nil
}

// ListLinks retrieves all links, newest first.
func (s *LinkService) ListLinks(ctx context.Context) ([]*model.Link, error) {
	return s.repo.ListLinks(ctx)
}

// UpdateLinkInput defines input for a partial link update.
// Nil fields are left unchanged.
type UpdateLinkInput struct {
	Slug        *string
	Title       *string
	Description *string
	Destination *string

	ProductImage *string
	Category     *string
	Tags         *[]string
	TrustBadges  *[]string

	Price         *string
	OriginalPrice *string
	Discount      *string

	Active       *bool
	RedirectType *string
	AutoRedirect *bool
}

// UpdateLink applies a partial update and returns the number of rows changed.
// updated_at is refreshed even when the patch carries no fields.
func (s *LinkService) UpdateLink(ctx context.Context, id string, input UpdateLinkInput) (int64, error) {
	patch, err := s.buildPatch(input)
	if err != nil {
		return 0, err
	}

	// Fetch the current slug first so the redirect cache entry can be
	// invalidated. The update itself stays a single statement.
	existing, err := s.repo.GetLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return 0, ErrLinkNotFound
		}
		return 0, err
	}

	changes, err := s.repo.UpdateLink(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLinkNotFound):
			return 0, ErrLinkNotFound
		case errors.Is(err, repository.ErrSlugExists):
			return 0, ErrSlugExists
		}
		return 0, err
	}

	s.metrics.IncLinkUpdated()

	// Eventual consistency is acceptable on the redirect path
	_ = s.cache.DeleteLink(ctx, existing.Slug)
	if patch.Slug != nil && *patch.Slug != existing.Slug {
		_ = s.cache.DeleteLink(ctx, *patch.Slug)
	}

	return changes, nil
}

// DeleteLink removes a link by ID.
func (s *LinkService) DeleteLink(ctx context.Context, id string) error {
	link, err := s.repo.GetLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if err := s.repo.DeleteLink(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	s.metrics.IncLinkDeleted()

	_ = s.cache.DeleteLink(ctx, link.Slug)

	return nil
}

// IncrementClickCount bumps a link's click counter by one.
// The increment happens store-side so concurrent calls never lose updates.
func (s *LinkService) IncrementClickCount(ctx context.Context, id string) error {
	if err := s.repo.IncrementClickCount(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	s.metrics.IncClickIncremented()

	return nil
}

// ResolveRedirect resolves a slug for the public redirect endpoint.
// This is the hot path - optimized for speed with cache-first lookup.
func (s *LinkService) ResolveRedirect(ctx context.Context, slug string) (*model.Link, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRedirectDuration(time.Since(start))
	}()

	cached, err := s.cache.GetLink(ctx, slug)
	if err == nil {
		s.metrics.IncRedirectCacheHit()
		return validateRedirectLink(cached.ToLink(slug))
	}

	if errors.Is(err, cache.ErrCacheMiss) {
		s.metrics.IncRedirectCacheMiss()
		if isNegative, _ := s.cache.IsNegativelyCached(ctx, slug); isNegative {
			return nil, ErrLinkNotFound
		}
	}
	// Redis errors fall through to the database

	link, err := s.repo.GetLinkBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			_ = s.cache.SetNegativeCache(ctx, slug)
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	_ = s.cache.SetLink(ctx, link)

	return validateRedirectLink(link)
}

// validateRedirectLink checks a link may be served by the redirect path.
func validateRedirectLink(link *model.Link) (*model.Link, error) {
	if !link.Redirectable() {
		return nil, ErrLinkInactive
	}
	return link, nil
}

// buildPatch validates a sparse update and translates it into a store patch.
func (s *LinkService) buildPatch(input UpdateLinkInput) (*repository.LinkPatch, error) {
	patch := &repository.LinkPatch{
		Title:         input.Title,
		Description:   input.Description,
		ProductImage:  input.ProductImage,
		Category:      input.Category,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Discount:      input.Discount,
		Active:        input.Active,
		AutoRedirect:  input.AutoRedirect,
	}

	if input.Slug != nil {
		if !slugRegex.MatchString(*input.Slug) {
			return nil, ErrInvalidSlug
		}
		patch.Slug = input.Slug
	}

	if input.Destination != nil {
		if err := s.validateDestination(*input.Destination); err != nil {
			return nil, err
		}
		patch.Destination = input.Destination
	}

	if input.RedirectType != nil {
		redirectType := model.RedirectType(*input.RedirectType)
		if !redirectType.IsValid() {
			return nil, ErrInvalidRedirectType
		}
		patch.RedirectType = &redirectType
	}

	if input.Tags != nil {
		tags := normalizeList(*input.Tags)
		patch.Tags = &tags
	}
	if input.TrustBadges != nil {
		badges := normalizeList(*input.TrustBadges)
		patch.TrustBadges = &badges
	}

	return patch, nil
}

// validateDestination validates a destination URL.
func (s *LinkService) validateDestination(dest string) error {
	if dest == "" {
		return ErrInvalidDestination
	}

	if len(dest) > maxDestinationLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		return ErrInvalidDestination
	}

	// Only allow http and https schemes
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidDestination
	}

	if parsed.Host == "" {
		return ErrInvalidDestination
	}

	return nil
}

// normalizeList guarantees lists round-trip as ordered, non-nil slices.
func normalizeList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
