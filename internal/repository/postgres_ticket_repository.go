package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

const ticketColumns = `id, subject, description, priority, status, date_created, last_update,
               customer_name, customer_email, customer_company, assignee_name, assignee_avatar, tags`

// PostgresTicketRepository reads tickets from the tickets table.
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates repository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// ListAll returns every ticket ordered by insertion sequence.
func (r *PostgresTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list tickets: %v", domain.ErrRetrievalFailed, err)
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: scan tickets: %v", domain.ErrRetrievalFailed, err)
	}
	return tickets, nil
}

// GetByID returns the ticket with id, or domain.ErrTicketNotFound.
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("%w: get ticket %s: %v", domain.ErrRetrievalFailed, id, err)
	}
	return ticket, nil
}

// Count returns the number of stored tickets.
func (r *PostgresTicketRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count tickets: %v", domain.ErrRetrievalFailed, err)
	}
	return n, nil
}

// InsertMany stores tickets in order inside one transaction.
func (r *PostgresTicketRepository) InsertMany(ctx context.Context, tickets []domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, subject, description, priority, status, date_created, last_update,
            customer_name, customer_email, customer_company, assignee_name, assignee_avatar, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i := range tickets {
		t := &tickets[i]
		var assigneeName, assigneeAvatar *string
		if t.AssignedTo != nil {
			assigneeName = &t.AssignedTo.Name
			assigneeAvatar = &t.AssignedTo.AvatarRef
		}
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(query,
			t.ID,
			t.Subject,
			t.Description,
			string(t.Priority),
			string(t.Status),
			t.DateCreated,
			t.LastUpdate,
			t.Customer.Name,
			t.Customer.Email,
			t.Customer.Company,
			assigneeName,
			assigneeAvatar,
			tags,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert tickets: %w", err)
	}
	return tx.Commit(ctx)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket         domain.Ticket
		priority       string
		status         string
		assigneeName   *string
		assigneeAvatar *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&priority,
		&status,
		&ticket.DateCreated,
		&ticket.LastUpdate,
		&ticket.Customer.Name,
		&ticket.Customer.Email,
		&ticket.Customer.Company,
		&assigneeName,
		&assigneeAvatar,
		&ticket.Tags,
	); err != nil {
		return nil, err
	}
	ticket.Priority = domain.TicketPriority(priority)
	ticket.Status = domain.TicketStatus(status)
	if assigneeName != nil {
		ticket.AssignedTo = &domain.Assignee{Name: *assigneeName}
		if assigneeAvatar != nil {
			ticket.AssignedTo.AvatarRef = *assigneeAvatar
		}
	}
	if ticket.Tags == nil {
		ticket.Tags = []string{}
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
