package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/afftrack/afftrack/internal/handler/dto"
	"github.com/afftrack/afftrack/internal/service"
)

// incrementClicksAction is the PATCH action that bumps the click counter.
const incrementClicksAction = "increment-clicks"

// LinkHandler handles HTTP requests for link operations.
type LinkHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /affiliate-links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListLinks(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkListResponse(links))
}

// Get handles GET /affiliate-links/{id}.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	link, err := h.svc.GetLink(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link))
}

// GetBySlug handles GET /affiliate-links/slug/{slug}.
func (h *LinkHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := h.svc.GetLinkBySlug(r.Context(), slug)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link))
}

// Create handles POST /affiliate-links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields", missingFields(err))
		return
	}

	input := service.CreateLinkInput{
		Slug:          req.Slug,
		Title:         req.Title,
		Description:   req.Description,
		Destination:   req.Destination,
		Category:      req.Category,
		ProductImage:  req.ProductImage,
		Tags:          req.Tags,
		TrustBadges:   req.TrustBadges,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      req.Discount,
		Active:        req.IsActive,
		RedirectType:  req.RedirectType,
		AutoRedirect:  req.AutoRedirect,
	}

	link, err := h.svc.CreateLink(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_created",
		"link_id", link.ID,
		"slug", link.Slug,
		"category", link.Category,
	)

	writeJSON(w, http.StatusCreated, dto.ToLinkResponse(link))
}

// Update handles PUT /affiliate-links/{id}.
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	input := service.UpdateLinkInput{
		Slug:          req.Slug,
		Title:         req.Title,
		Description:   req.Description,
		Destination:   req.Destination,
		Category:      req.Category,
		ProductImage:  req.ProductImage,
		Tags:          req.Tags,
		TrustBadges:   req.TrustBadges,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      req.Discount,
		Active:        req.IsActive,
		RedirectType:  req.RedirectType,
		AutoRedirect:  req.AutoRedirect,
	}

	changes, err := h.svc.UpdateLink(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_updated", "link_id", id, "changes", changes)

	writeJSON(w, http.StatusOK, dto.MutationResponse{Success: true, Changes: changes})
}

// Patch handles PATCH /affiliate-links/{id}?action=increment-clicks.
func (h *LinkHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	action := r.URL.Query().Get("action")
	if action != incrementClicksAction {
		writeError(w, http.StatusBadRequest, "Unknown action", "supported: "+incrementClicksAction)
		return
	}

	if err := h.svc.IncrementClickCount(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MutationResponse{Success: true})
}

// Delete handles DELETE /affiliate-links/{id}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteLink(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_deleted", "link_id", id)

	writeJSON(w, http.StatusOK, dto.MutationResponse{Success: true})
}

// handleServiceError maps service errors to HTTP responses.
func (h *LinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "Affiliate link not found", "")
	case errors.Is(err, service.ErrSlugExists):
		writeError(w, http.StatusConflict, "Slug already exists", "")
	case errors.Is(err, service.ErrInvalidSlug):
		writeError(w, http.StatusBadRequest, "Invalid slug format", "")
	case errors.Is(err, service.ErrInvalidDestination):
		writeError(w, http.StatusBadRequest, "Invalid destination URL", "")
	case errors.Is(err, service.ErrInvalidRedirectType):
		writeError(w, http.StatusBadRequest, "Invalid redirect type", "")
	case errors.Is(err, service.ErrURLTooLong):
		writeError(w, http.StatusBadRequest, "Destination URL exceeds maximum length", "")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

// missingFields summarizes validator failures as wire-format field names.
func missingFields(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ""
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, wireFieldName(fe.Field()))
	}
	return strings.Join(fields, ", ")
}

// wireFieldName lowercases the first rune to match the JSON contract.
func wireFieldName(field string) string {
	if field == "" {
		return field
	}
	if field == "Destination" {
		return "destinationUrl"
	}
	if field == "LinkID" {
		return "linkId"
	}
	return strings.ToLower(field[:1]) + field[1:]
}
