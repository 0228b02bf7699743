package domain

import "fmt"

// TicketFilters narrows the ticket collection. A zero-valued field is absent
// and matches every ticket.
type TicketFilters struct {
	Priority TicketPriority
	Status   TicketStatus
}

// IsEmpty reports whether no criterion is set.
func (f TicketFilters) IsEmpty() bool {
	return f.Priority == "" && f.Status == ""
}

// Validate rejects present criteria holding unknown enum values.
func (f TicketFilters) Validate() error {
	if f.Priority != "" && !f.Priority.IsValid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, f.Priority)
	}
	if f.Status != "" && !f.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, f.Status)
	}
	return nil
}

// Matches reports whether t satisfies every present criterion.
func (f TicketFilters) Matches(t *Ticket) bool {
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// PaginationInfo describes a page's position within the filtered set.
type PaginationInfo struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
}

// NewPaginationInfo derives metadata for page of perPage items over total.
// TotalPages is never below 1. CurrentPage is kept as requested.
func NewPaginationInfo(page, perPage, total int) PaginationInfo {
	pages := 1
	if perPage > 0 && total > 0 {
		pages = (total-1)/perPage + 1
	}
	return PaginationInfo{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: perPage,
	}
}

// TicketPage is one page of filtered, sorted tickets.
type TicketPage struct {
	Tickets    []TicketSummary
	Pagination PaginationInfo
}

// Clone returns a deep copy of the page.
func (p *TicketPage) Clone() *TicketPage {
	if p == nil {
		return nil
	}
	out := &TicketPage{
		Tickets:    make([]TicketSummary, len(p.Tickets)),
		Pagination: p.Pagination,
	}
	for i := range p.Tickets {
		out.Tickets[i] = p.Tickets[i].Clone()
	}
	return out
}
