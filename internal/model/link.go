// Package model defines domain entities for the application.
package model

import "time"

// RedirectType controls how activating a link behaves.
type RedirectType string

const (
	// RedirectLanding sends the visitor to an interstitial landing page.
	RedirectLanding RedirectType = "landing"
	// RedirectDirect sends the visitor straight to the destination URL.
	RedirectDirect RedirectType = "direct"
)

// IsValid checks if the redirect type is a known value.
func (r RedirectType) IsValid() bool {
	return r == RedirectLanding || r == RedirectDirect
}

// Link represents one trackable outbound affiliate link.
type Link struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Destination string

	ProductImage *string
	Category     string
	Tags         []string
	TrustBadges  []string

	// Display pricing, stored as free-form strings ("$29.99", "20% off").
	Price         *string
	OriginalPrice *string
	Discount      *string

	Active       bool
	RedirectType RedirectType
	AutoRedirect bool

	ClickCount int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Redirectable reports whether the redirect endpoint may serve this link.
func (l *Link) Redirectable() bool {
	return l.Active
}

// DirectRedirect reports whether activation should skip the landing page.
func (l *Link) DirectRedirect() bool {
	return l.RedirectType == RedirectDirect || l.AutoRedirect
}
