package dto

import (
	"github.com/spec-kit/ticket-dashboard/internal/dashboard"
)

// FiltersRequest replaces a dashboard's filters. Empty fields are absent.
type FiltersRequest struct {
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// PageRequest moves a dashboard to another page.
type PageRequest struct {
	Page int `json:"page"`
}

// SelectionRequest opens the detail view for a ticket.
type SelectionRequest struct {
	TicketID string `json:"ticket_id"`
}

// FiltersResponse echoes the active filters.
type FiltersResponse struct {
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
}

// FetchStatusResponse describes the latest list retrieval.
type FetchStatusResponse struct {
	State     dashboard.FetchState `json:"state"`
	Filters   FiltersResponse      `json:"filters"`
	Page      int                  `json:"page"`
	FromCache bool                 `json:"from_cache"`
	Reason    string               `json:"reason,omitempty"`
}

// DashboardResponse is the rendered state of one dashboard session.
type DashboardResponse struct {
	SessionID        string                `json:"session_id"`
	Filters          FiltersResponse       `json:"filters"`
	HasActiveFilters bool                  `json:"has_active_filters"`
	Page             int                   `json:"page"`
	IsLoading        bool                  `json:"is_loading"`
	Status           FetchStatusResponse   `json:"status"`
	DataIsCurrent    bool                  `json:"data_is_current"`
	Tickets          []TicketSummary       `json:"tickets"`
	Pagination       PaginationResponse    `json:"pagination"`
	DetailOpen       bool                  `json:"detail_open"`
	Selection        *TicketDetailResponse `json:"selection"`
	Notice           string                `json:"notice,omitempty"`
}

// NewDashboard renders a dashboard snapshot.
func NewDashboard(v dashboard.View) DashboardResponse {
	page := NewTicketPage(v.Tickets(), v.Pagination())
	resp := DashboardResponse{
		SessionID: v.SessionID,
		Filters: FiltersResponse{
			Priority: string(v.Filters.Priority),
			Status:   string(v.Filters.Status),
		},
		HasActiveFilters: v.HasActiveFilters(),
		Page:             v.Page,
		IsLoading:        v.IsLoading(),
		Status: FetchStatusResponse{
			State: v.Status.State,
			Filters: FiltersResponse{
				Priority: string(v.Status.Key.Filters.Priority),
				Status:   string(v.Status.Key.Filters.Status),
			},
			Page:      v.Status.Key.Page,
			FromCache: v.Status.FromCache,
			Reason:    v.Status.Reason,
		},
		DataIsCurrent: v.DataIsCurrent(),
		Tickets:       page.Tickets,
		Pagination:    page.Pagination,
		DetailOpen:    v.DetailOpen,
		Notice:        v.Notice,
	}
	if v.Selection != nil {
		detail := NewTicketDetail(v.Selection)
		resp.Selection = &detail
	}
	return resp
}
