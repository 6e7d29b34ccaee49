package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/afftrack/afftrack/internal/metrics"
	"github.com/afftrack/afftrack/internal/service"
)

// recordClickTimeout bounds the fire-and-forget click write after the
// redirect response has been sent.
const recordClickTimeout = 5 * time.Second

// RedirectHandler serves the public /go/{slug} redirect endpoint.
type RedirectHandler struct {
	links          *service.LinkService
	analytics      *service.AnalyticsService
	landingBaseURL string
	logger         *slog.Logger
	metrics        metrics.Recorder
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(links *service.LinkService, analytics *service.AnalyticsService, landingBaseURL string, logger *slog.Logger, recorder metrics.Recorder) *RedirectHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RedirectHandler{
		links:          links,
		analytics:      analytics,
		landingBaseURL: strings.TrimSuffix(landingBaseURL, "/"),
		logger:         logger,
		metrics:        recorder,
	}
}

// Redirect handles GET /go/{slug}.
//
// Direct links (or landing links with auto-redirect) record a click and 302
// straight to the destination. Landing links hand off to the marketing
// site's interstitial, which beacons the click itself so nothing is counted
// twice here.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := h.links.ResolveRedirect(r.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) || errors.Is(err, service.ErrLinkInactive) {
			h.metrics.IncRedirect("not_found")
			writeError(w, http.StatusNotFound, "Affiliate link not found", "")
			return
		}
		h.logger.Error("redirect_failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	if !link.DirectRedirect() {
		h.metrics.IncRedirect("landing")
		http.Redirect(w, r, h.landingBaseURL+"/"+slug, http.StatusFound)
		return
	}

	h.recordClickAsync(r, link.ID)
	h.metrics.IncRedirect("direct")
	http.Redirect(w, r, link.Destination, http.StatusFound)
}

// recordClickAsync records the click without blocking the redirect.
// Failures are logged and dropped; the redirect already succeeded.
func (h *RedirectHandler) recordClickAsync(r *http.Request, linkID string) {
	input := service.RecordClickInput{
		LinkID:    linkID,
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		IPAddress: clientIP(r),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordClickTimeout)
		defer cancel()

		if _, err := h.analytics.RecordClick(ctx, input); err != nil {
			h.logger.Warn("redirect click not recorded",
				"link_id", linkID,
				"error", err,
			)
		}
	}()
}
