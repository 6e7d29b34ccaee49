package dto

import (
	"time"

	"github.com/afftrack/afftrack/internal/model"
)

// RecordClickRequest represents the request body for recording a click.
type RecordClickRequest struct {
	LinkID string `json:"linkId" validate:"required"`

	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Device    string `json:"device,omitempty"`
	Converted bool   `json:"converted,omitempty"`
}

// ClickEventResponse represents a click event in API responses.
type ClickEventResponse struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"linkId"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	Device    string    `json:"device,omitempty"`
	Converted bool      `json:"converted"`
}

// StatsResponse represents the aggregate snapshot.
type StatsResponse struct {
	TotalLinks       int64         `json:"totalLinks"`
	ActiveLinks      int64         `json:"activeLinks"`
	TotalClicks      int64         `json:"totalClicks"`
	ClicksLast30Days int64         `json:"clicksLast30Days"`
	TopLink          *LinkResponse `json:"topLink"`
}

// ToClickEventResponse converts a ClickEvent model to its response DTO.
func ToClickEventResponse(event *model.ClickEvent) *ClickEventResponse {
	return &ClickEventResponse{
		ID:        event.ID,
		LinkID:    event.LinkID,
		Timestamp: event.Timestamp,
		UserAgent: event.UserAgent,
		Referrer:  event.Referrer,
		IPAddress: event.IPAddress,
		Device:    event.Device,
		Converted: event.Converted,
	}
}

// ToClickEventListResponse converts click events to response DTOs.
func ToClickEventListResponse(events []*model.ClickEvent) []*ClickEventResponse {
	responses := make([]*ClickEventResponse, len(events))
	for i, event := range events {
		responses[i] = ToClickEventResponse(event)
	}
	return responses
}

// ToStatsResponse converts a StatsSnapshot to its response DTO.
func ToStatsResponse(snapshot *model.StatsSnapshot) *StatsResponse {
	response := &StatsResponse{
		TotalLinks:       snapshot.TotalLinks,
		ActiveLinks:      snapshot.ActiveLinks,
		TotalClicks:      snapshot.TotalClicks,
		ClicksLast30Days: snapshot.ClicksLast30Days,
	}
	if snapshot.TopLink != nil {
		response.TopLink = ToLinkResponse(snapshot.TopLink)
	}
	return response
}
