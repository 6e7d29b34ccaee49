package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afftrack/afftrack/internal/metrics"
	"github.com/afftrack/afftrack/internal/model"
	"github.com/afftrack/afftrack/internal/repository"
)

const maxHeaderLength = 500

// AnalyticsService records click events and propagates counter increments.
type AnalyticsService struct {
	repo    *repository.Repository
	links   *LinkService
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo *repository.Repository, links *LinkService, logger *slog.Logger, recorder metrics.Recorder) *AnalyticsService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AnalyticsService{
		repo:    repo,
		links:   links,
		logger:  logger.With("component", "analytics"),
		metrics: recorder,
	}
}

// RecordClickInput carries request context for one tracked click.
type RecordClickInput struct {
	LinkID    string
	UserAgent string
	Referrer  string
	IPAddress string
	Device    string
	Converted bool
}

// RecordClick inserts one click event, then forwards a counter increment to
// the link service. The two writes share no transaction: the event log is
// the record of truth and the cached counter may lag behind it.
func (s *AnalyticsService) RecordClick(ctx context.Context, input RecordClickInput) (*model.ClickEvent, error) {
	device := input.Device
	if device == "" {
		device = ClassifyDevice(input.UserAgent)
	}

	event := &model.ClickEvent{
		ID:        uuid.NewString(),
		LinkID:    input.LinkID,
		Timestamp: time.Now().UTC(),
		UserAgent: truncate(input.UserAgent, maxHeaderLength),
		Referrer:  truncate(input.Referrer, maxHeaderLength),
		IPAddress: input.IPAddress,
		Device:    device,
		Converted: input.Converted,
	}

	if err := s.repo.InsertClickEvent(ctx, event); err != nil {
		return nil, err
	}

	if err := s.links.IncrementClickCount(ctx, input.LinkID); err != nil {
		// The event is persisted; a lagging counter is accepted
		if errors.Is(err, ErrLinkNotFound) {
			s.logger.Debug("click recorded for unknown link",
				"link_id", input.LinkID,
				"event_id", event.ID,
			)
		} else {
			s.logger.Warn("click counter increment failed",
				"link_id", input.LinkID,
				"event_id", event.ID,
				"error", err,
			)
		}
		s.metrics.IncClickRecorded("counter_lagged")
		return event, nil
	}

	s.metrics.IncClickRecorded("success")

	return event, nil
}

// ListClicks returns recent click events, optionally filtered by link ID.
// Bounded by the repository cap; full history requires paging by timestamp.
func (s *AnalyticsService) ListClicks(ctx context.Context, linkID string) ([]*model.ClickEvent, error) {
	return s.repo.ListClickEvents(ctx, linkID, repository.MaxClickListLimit)
}

// ClassifyDevice buckets a User-Agent string into a device class.
func ClassifyDevice(userAgent string) string {
	if userAgent == "" {
		return model.DeviceUnknown
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "bot"), strings.Contains(ua, "crawler"), strings.Contains(ua, "spider"):
		return model.DeviceBot
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		return model.DeviceTablet
	case strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		// Android without "Mobile" is the tablet form factor
		return model.DeviceTablet
	case strings.Contains(ua, "mobi"), strings.Contains(ua, "iphone"):
		return model.DeviceMobile
	default:
		return model.DeviceDesktop
	}
}

// truncate limits header-derived strings to a storable length.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
