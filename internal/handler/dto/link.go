// Package dto provides Data Transfer Objects for API requests and responses.
// The wire contract is camelCase; translation to and from the snake_case
// storage model happens here and nowhere else.
package dto

import (
	"time"

	"github.com/afftrack/afftrack/internal/model"
)

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	Slug        string `json:"slug" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Destination string `json:"destinationUrl" validate:"required"`
	Category    string `json:"category" validate:"required"`

	ProductImage *string  `json:"productImage,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	TrustBadges  []string `json:"trustBadges,omitempty"`

	Price         *string `json:"price,omitempty"`
	OriginalPrice *string `json:"originalPrice,omitempty"`
	Discount      *string `json:"discount,omitempty"`

	IsActive     *bool  `json:"isActive,omitempty"`
	RedirectType string `json:"redirectType,omitempty"`
	AutoRedirect *bool  `json:"autoRedirect,omitempty"`
}

// UpdateLinkRequest represents the request body for a partial update.
// Absent fields leave the stored value unchanged.
type UpdateLinkRequest struct {
	Slug        *string `json:"slug,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Destination *string `json:"destinationUrl,omitempty"`
	Category    *string `json:"category,omitempty"`

	ProductImage *string   `json:"productImage,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	TrustBadges  *[]string `json:"trustBadges,omitempty"`

	Price         *string `json:"price,omitempty"`
	OriginalPrice *string `json:"originalPrice,omitempty"`
	Discount      *string `json:"discount,omitempty"`

	IsActive     *bool   `json:"isActive,omitempty"`
	RedirectType *string `json:"redirectType,omitempty"`
	AutoRedirect *bool   `json:"autoRedirect,omitempty"`
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Destination string `json:"destinationUrl"`
	Category    string `json:"category"`

	ProductImage *string  `json:"productImage,omitempty"`
	Tags         []string `json:"tags"`
	TrustBadges  []string `json:"trustBadges"`

	Price         *string `json:"price,omitempty"`
	OriginalPrice *string `json:"originalPrice,omitempty"`
	Discount      *string `json:"discount,omitempty"`

	IsActive     bool   `json:"isActive"`
	RedirectType string `json:"redirectType"`
	AutoRedirect bool   `json:"autoRedirect"`

	ClickCount int64     `json:"clickCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MutationResponse acknowledges an update, increment, or delete.
type MutationResponse struct {
	Success bool  `json:"success"`
	Changes int64 `json:"changes,omitempty"`
}

// ErrorResponse represents an API error. Details carries optional
// diagnostic information and is not a stable contract.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link) *LinkResponse {
	return &LinkResponse{
		ID:            link.ID,
		Slug:          link.Slug,
		Title:         link.Title,
		Description:   link.Description,
		Destination:   link.Destination,
		Category:      link.Category,
		ProductImage:  link.ProductImage,
		Tags:          link.Tags,
		TrustBadges:   link.TrustBadges,
		Price:         link.Price,
		OriginalPrice: link.OriginalPrice,
		Discount:      link.Discount,
		IsActive:      link.Active,
		RedirectType:  string(link.RedirectType),
		AutoRedirect:  link.AutoRedirect,
		ClickCount:    link.ClickCount,
		CreatedAt:     link.CreatedAt,
		UpdatedAt:     link.UpdatedAt,
	}
}

// ToLinkListResponse converts a slice of Link models to response DTOs.
func ToLinkListResponse(links []*model.Link) []*LinkResponse {
	responses := make([]*LinkResponse, len(links))
	for i, link := range links {
		responses[i] = ToLinkResponse(link)
	}
	return responses
}
