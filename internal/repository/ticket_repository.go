package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

// TicketRepository is the read-only ticket store consumed by the query engine.
type TicketRepository interface {
	// ListAll returns every ticket in source order.
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	// GetByID returns domain.ErrTicketNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
}

// MemoryTicketRepository keeps tickets in process memory. Each instance owns
// its own collection; callers only ever receive copies.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
	index   map[string]int
}

// NewMemoryTicketRepository copies tickets into a new store. Later entries
// with a duplicate id are rejected.
func NewMemoryTicketRepository(tickets []domain.Ticket) (*MemoryTicketRepository, error) {
	repo := &MemoryTicketRepository{
		tickets: make([]domain.Ticket, 0, len(tickets)),
		index:   make(map[string]int, len(tickets)),
	}
	for i := range tickets {
		if tickets[i].ID == "" {
			return nil, fmt.Errorf("%w: ticket at position %d has no id", domain.ErrInvalidArgument, i)
		}
		if _, exists := repo.index[tickets[i].ID]; exists {
			return nil, fmt.Errorf("%w: duplicate ticket id %q", domain.ErrInvalidArgument, tickets[i].ID)
		}
		repo.index[tickets[i].ID] = len(repo.tickets)
		repo.tickets = append(repo.tickets, tickets[i].Clone())
	}
	return repo, nil
}

func (r *MemoryTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Ticket, len(r.tickets))
	for i := range r.tickets {
		out[i] = r.tickets[i].Clone()
	}
	return out, nil
}

func (r *MemoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.index[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	ticket := r.tickets[pos].Clone()
	return &ticket, nil
}

// Len returns the number of stored tickets.
func (r *MemoryTicketRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tickets)
}
