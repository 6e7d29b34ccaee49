package model

import (
	"strconv"
	"time"
)

// CachedLink is the slice of link state the redirect hot path needs,
// stored as a Redis hash. String types for Redis hash compatibility.
type CachedLink struct {
	ID           string `redis:"id"`
	Destination  string `redis:"destination"`
	RedirectType string `redis:"redirect_type"`
	AutoRedirect string `redis:"auto_redirect"` // "1" or "0"
	Active       string `redis:"active"`        // "1" or "0"
	UpdatedAt    string `redis:"updated_at"`    // Unix timestamp
}

// ToLink converts CachedLink back to the domain model.
// Only the fields the redirect path reads are populated.
func (c *CachedLink) ToLink(slug string) *Link {
	link := &Link{
		ID:           c.ID,
		Slug:         slug,
		Destination:  c.Destination,
		RedirectType: RedirectType(c.RedirectType),
		AutoRedirect: c.AutoRedirect == "1",
		Active:       c.Active == "1",
	}

	if ts, err := strconv.ParseInt(c.UpdatedAt, 10, 64); err == nil && ts > 0 {
		link.UpdatedAt = time.Unix(ts, 0)
	}

	return link
}

// ToCachedLink converts a Link to its cache representation.
func (l *Link) ToCachedLink() *CachedLink {
	return &CachedLink{
		ID:           l.ID,
		Destination:  l.Destination,
		RedirectType: string(l.RedirectType),
		AutoRedirect: boolToString(l.AutoRedirect),
		Active:       boolToString(l.Active),
		UpdatedAt:    strconv.FormatInt(l.UpdatedAt.Unix(), 10),
	}
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
