// Package model defines domain entities for the application.
package model

import "time"

// Device classification buckets derived from the User-Agent.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// ClickEvent represents one observed click against a link.
// Events are append-only: inserted once, never updated.
type ClickEvent struct {
	ID string

	// LinkID is a logical reference to links.id. It is not validated
	// against the link store at insert time.
	LinkID string

	Timestamp time.Time

	UserAgent string
	Referrer  string
	IPAddress string
	Device    string
	Converted bool
}

// StatsSnapshot is one on-demand rollup over both stores. The five values
// are independent reads with no point-in-time consistency across them.
type StatsSnapshot struct {
	TotalLinks       int64
	ActiveLinks      int64
	TotalClicks      int64
	ClicksLast30Days int64
	TopLink          *Link
}
