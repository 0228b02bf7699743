package dto

import (
	"time"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

// CustomerResponse is the requester block of a ticket.
type CustomerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// AssigneeResponse is the agent block of a ticket.
type AssigneeResponse struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	Subject     string                `json:"subject"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	DateCreated time.Time             `json:"date_created"`
	LastUpdate  time.Time             `json:"last_update"`
	Customer    CustomerResponse      `json:"customer"`
	AssignedTo  *AssigneeResponse     `json:"assigned_to"`
	Tags        []string              `json:"tags"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string `json:"description"`
}

// PaginationResponse mirrors domain.PaginationInfo.
type PaginationResponse struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

// TicketPageResponse is one page of the ticket list.
type TicketPageResponse struct {
	Tickets    []TicketSummary    `json:"tickets"`
	Pagination PaginationResponse `json:"pagination"`
}

// NewTicketSummary maps a list projection to its response.
func NewTicketSummary(t *domain.TicketSummary) TicketSummary {
	resp := TicketSummary{
		ID:          t.ID,
		Subject:     t.Subject,
		Priority:    t.Priority,
		Status:      t.Status,
		DateCreated: t.DateCreated,
		LastUpdate:  t.LastUpdate,
		Customer: CustomerResponse{
			Name:    t.Customer.Name,
			Email:   t.Customer.Email,
			Company: t.Customer.Company,
		},
		Tags: t.Tags,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if t.AssignedTo != nil {
		resp.AssignedTo = &AssigneeResponse{Name: t.AssignedTo.Name, Avatar: t.AssignedTo.AvatarRef}
	}
	return resp
}

// NewTicketDetail maps a complete ticket to its response.
func NewTicketDetail(t *domain.Ticket) TicketDetailResponse {
	summary := t.Summary()
	return TicketDetailResponse{
		TicketSummary: NewTicketSummary(&summary),
		Description:   t.Description,
	}
}

// NewPagination maps pagination metadata.
func NewPagination(p domain.PaginationInfo) PaginationResponse {
	return PaginationResponse{
		CurrentPage:  p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalItems:   p.TotalItems,
		ItemsPerPage: p.ItemsPerPage,
	}
}

// NewTicketPage maps a ticket page. Tickets is never null.
func NewTicketPage(tickets []domain.TicketSummary, pagination domain.PaginationInfo) TicketPageResponse {
	items := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketSummary(&tickets[i]))
	}
	return TicketPageResponse{Tickets: items, Pagination: NewPagination(pagination)}
}
