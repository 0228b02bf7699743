package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

func sampleTickets() []domain.Ticket {
	created := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	return []domain.Ticket{
		{ID: "TKT-0001", Subject: "a", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, DateCreated: created, LastUpdate: created, Tags: []string{"bug"}},
		{ID: "TKT-0002", Subject: "b", Priority: domain.TicketPriorityLow, Status: domain.TicketStatusClosed, DateCreated: created, LastUpdate: created,
			AssignedTo: &domain.Assignee{Name: "Agent 1"}, Tags: []string{"support"}},
	}
}

func TestMemoryTicketRepository_ListAllPreservesOrder(t *testing.T) {
	repo, err := NewMemoryTicketRepository(sampleTickets())
	require.NoError(t, err)

	tickets, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "TKT-0001", tickets[0].ID)
	assert.Equal(t, "TKT-0002", tickets[1].ID)
	assert.Equal(t, 2, repo.Len())
}

func TestMemoryTicketRepository_ReturnsCopies(t *testing.T) {
	input := sampleTickets()
	repo, err := NewMemoryTicketRepository(input)
	require.NoError(t, err)
	input[0].Subject = "changed after construction"

	listed, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	listed[0].Tags[0] = "mutated"
	listed[1].AssignedTo.Name = "mutated"

	got, err := repo.GetByID(context.Background(), "TKT-0002")
	require.NoError(t, err)
	got.Subject = "mutated"

	again, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Subject)
	assert.Equal(t, "bug", again[0].Tags[0])
	assert.Equal(t, "Agent 1", again[1].AssignedTo.Name)
	assert.Equal(t, "b", again[1].Subject)
}

func TestMemoryTicketRepository_GetByIDNotFound(t *testing.T) {
	repo, err := NewMemoryTicketRepository(sampleTickets())
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), "TKT-0404")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestMemoryTicketRepository_RejectsBadInput(t *testing.T) {
	dup := append(sampleTickets(), domain.Ticket{ID: "TKT-0001"})
	_, err := NewMemoryTicketRepository(dup)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = NewMemoryTicketRepository([]domain.Ticket{{Subject: "no id"}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMemoryTicketRepository_EmptyStore(t *testing.T) {
	repo, err := NewMemoryTicketRepository(nil)
	require.NoError(t, err)

	tickets, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestMemoryTicketRepository_CancelledContext(t *testing.T) {
	repo, err := NewMemoryTicketRepository(sampleTickets())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.ListAll(ctx)
	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)
	_, err = repo.GetByID(ctx, "TKT-0001")
	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)
}
