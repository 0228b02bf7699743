package events

import (
	"time"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFiltersChanged       EventType = "dashboard_filters_changed"
	EventPageChanged          EventType = "dashboard_page_changed"
	EventTicketsLoaded        EventType = "dashboard_tickets_loaded"
	EventTicketsLoadFailed    EventType = "dashboard_tickets_load_failed"
	EventStaleResponseDropped EventType = "dashboard_stale_response_dropped"
	EventTicketSelected       EventType = "dashboard_ticket_selected"
	EventTicketNotFound       EventType = "dashboard_ticket_not_found"
	EventTicketLookupFailed   EventType = "dashboard_ticket_lookup_failed"
	EventSelectionClosed      EventType = "dashboard_selection_closed"
)

// AllEventTypes lists every event a dashboard can publish.
var AllEventTypes = []EventType{
	EventFiltersChanged,
	EventPageChanged,
	EventTicketsLoaded,
	EventTicketsLoadFailed,
	EventStaleResponseDropped,
	EventTicketSelected,
	EventTicketNotFound,
	EventTicketLookupFailed,
	EventSelectionClosed,
}

// Event represents a state change emitted by a dashboard.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// QueryPayload identifies the filter/page pair an event refers to.
type QueryPayload struct {
	Priority domain.TicketPriority `json:"priority,omitempty"`
	Status   domain.TicketStatus   `json:"status,omitempty"`
	Page     int                   `json:"page"`
}

// TicketsLoadedPayload payload.
type TicketsLoadedPayload struct {
	QueryPayload
	TotalItems int  `json:"total_items"`
	FromCache  bool `json:"from_cache"`
}

// TicketsLoadFailedPayload payload.
type TicketsLoadFailedPayload struct {
	QueryPayload
	Reason string `json:"reason"`
}

// SelectionPayload payload.
type SelectionPayload struct {
	TicketID string `json:"ticket_id"`
}
