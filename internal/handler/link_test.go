package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/afftrack/afftrack/internal/handler/dto"
)

// Request decoding and validation run before any service call, so a
// nil-service handler is enough to exercise the 400 paths.
func newLinkHandler() *LinkHandler {
	return NewLinkHandler(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLinkHandler_Create_InvalidBody(t *testing.T) {
	h := newLinkHandler()

	req := httptest.NewRequest(http.MethodPost, "/affiliate-links", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Invalid request body" {
		t.Errorf("error = %q, want 'Invalid request body'", resp.Error)
	}
}

func TestLinkHandler_Create_MissingFields(t *testing.T) {
	h := newLinkHandler()

	body := `{"slug": "vitamin-c", "title": "Vitamin C"}`
	req := httptest.NewRequest(http.MethodPost, "/affiliate-links", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Missing required fields" {
		t.Errorf("error = %q, want 'Missing required fields'", resp.Error)
	}
	for _, field := range []string{"description", "destinationUrl", "category"} {
		if !strings.Contains(resp.Details, field) {
			t.Errorf("details %q missing field %q", resp.Details, field)
		}
	}
	if strings.Contains(resp.Details, "slug") {
		t.Errorf("details %q should not name present field slug", resp.Details)
	}
}

func TestLinkHandler_Patch_UnknownAction(t *testing.T) {
	h := newLinkHandler()

	tests := []struct {
		name   string
		target string
	}{
		{"no action", "/affiliate-links/abc"},
		{"wrong action", "/affiliate-links/abc?action=reset-clicks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tt.target, nil)
			rec := httptest.NewRecorder()
			h.Patch(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error != "Unknown action" {
				t.Errorf("error = %q, want 'Unknown action'", resp.Error)
			}
		})
	}
}

func TestLinkHandler_Update_InvalidBody(t *testing.T) {
	h := newLinkHandler()

	req := httptest.NewRequest(http.MethodPut, "/affiliate-links/abc", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestWireFieldName(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"Slug", "slug"},
		{"Title", "title"},
		{"Destination", "destinationUrl"},
		{"LinkID", "linkId"},
		{"TrustBadges", "trustBadges"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := wireFieldName(tt.field); got != tt.want {
			t.Errorf("wireFieldName(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}
