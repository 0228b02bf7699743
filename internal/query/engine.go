// Package query filters, sorts and paginates tickets and resolves single
// tickets for detail views.
package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/repository"
)

// Engine answers list and lookup queries against one ticket store.
type Engine struct {
	tickets repository.TicketRepository
}

// NewEngine constructs an engine bound to repo.
func NewEngine(repo repository.TicketRepository) *Engine {
	return &Engine{tickets: repo}
}

// Query returns page of the tickets matching filters, newest first.
func (e *Engine) Query(ctx context.Context, filters domain.TicketFilters, page, perPage int) (*domain.TicketPage, error) {
	if err := validate(filters, page, perPage); err != nil {
		return nil, err
	}
	all, err := e.tickets.ListAll(ctx)
	if err != nil {
		return nil, retrievalError(err)
	}
	return Apply(all, filters, page, perPage)
}

// FindByID returns the complete ticket record, including its description.
func (e *Engine) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := e.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, retrievalError(err)
	}
	out := ticket.Clone()
	return &out, nil
}

// Apply runs filter, stable sort and pagination over tickets without
// modifying the input slice or its elements.
func Apply(tickets []domain.Ticket, filters domain.TicketFilters, page, perPage int) (*domain.TicketPage, error) {
	if err := validate(filters, page, perPage); err != nil {
		return nil, err
	}

	matched := Filter(tickets, filters)
	SortNewestFirst(matched)

	// Pages past the end are empty. Checking the page count first keeps
	// (page-1)*perPage from overflowing for huge pages.
	start, end := len(matched), len(matched)
	if len(matched) > 0 && page-1 <= (len(matched)-1)/perPage {
		start = (page - 1) * perPage
		end = start + min(perPage, len(matched)-start)
	}

	items := make([]domain.TicketSummary, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, matched[i].Summary())
	}
	return &domain.TicketPage{
		Tickets:    items,
		Pagination: domain.NewPaginationInfo(page, perPage, len(matched)),
	}, nil
}

// Filter returns pointers to the tickets matching filters, in source order.
func Filter(tickets []domain.Ticket, filters domain.TicketFilters) []*domain.Ticket {
	out := make([]*domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if filters.Matches(&tickets[i]) {
			out = append(out, &tickets[i])
		}
	}
	return out
}

// SortNewestFirst orders tickets by creation time descending. Equal
// timestamps keep their relative order.
func SortNewestFirst(tickets []*domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].DateCreated.After(tickets[j].DateCreated)
	})
}

func validate(filters domain.TicketFilters, page, perPage int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidArgument, page)
	}
	if perPage <= 0 {
		return fmt.Errorf("%w: items per page must be > 0, got %d", domain.ErrInvalidArgument, perPage)
	}
	return filters.Validate()
}

func retrievalError(err error) error {
	if domain.IsKnown(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
}
