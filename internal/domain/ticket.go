package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates ticket states. No transition order is enforced.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency, ordered by severity.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// AllPriorities lists priorities from least to most severe.
var AllPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// AllStatuses lists every known status.
var AllStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Rank returns the severity index of the priority, or -1 when unknown.
func (p TicketPriority) Rank() int {
	for i, candidate := range AllPriorities {
		if candidate == p {
			return i
		}
	}
	return -1
}

// IsValid reports whether p is a known priority.
func (p TicketPriority) IsValid() bool {
	return p.Rank() >= 0
}

// IsValid reports whether s is a known status.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range AllStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePriority converts raw input into a TicketPriority.
func ParsePriority(raw string) (TicketPriority, error) {
	p := TicketPriority(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, raw)
	}
	return p, nil
}

// ParseStatus converts raw input into a TicketStatus.
func ParseStatus(raw string) (TicketStatus, error) {
	s := TicketStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, raw)
	}
	return s, nil
}

// Customer is the requester embedded in every ticket.
type Customer struct {
	Name    string
	Email   string
	Company string
}

// Assignee is the agent working a ticket.
type Assignee struct {
	Name      string
	AvatarRef string
}

// Ticket is the canonical support request record.
type Ticket struct {
	ID          string
	Subject     string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	DateCreated time.Time
	LastUpdate  time.Time
	Customer    Customer
	AssignedTo  *Assignee
	Tags        []string
}

// TicketSummary is the list projection of a ticket; it omits the description.
type TicketSummary struct {
	ID          string
	Subject     string
	Priority    TicketPriority
	Status      TicketStatus
	DateCreated time.Time
	LastUpdate  time.Time
	Customer    Customer
	AssignedTo  *Assignee
	Tags        []string
}

// IsAssigned reports whether an agent owns the ticket.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedTo != nil
}

// Clone returns a deep copy that shares no memory with t.
func (t *Ticket) Clone() Ticket {
	out := *t
	out.AssignedTo = cloneAssignee(t.AssignedTo)
	out.Tags = cloneTags(t.Tags)
	return out
}

// Summary projects the ticket for list views.
func (t *Ticket) Summary() TicketSummary {
	return TicketSummary{
		ID:          t.ID,
		Subject:     t.Subject,
		Priority:    t.Priority,
		Status:      t.Status,
		DateCreated: t.DateCreated,
		LastUpdate:  t.LastUpdate,
		Customer:    t.Customer,
		AssignedTo:  cloneAssignee(t.AssignedTo),
		Tags:        cloneTags(t.Tags),
	}
}

// Clone returns a deep copy of the summary.
func (s *TicketSummary) Clone() TicketSummary {
	out := *s
	out.AssignedTo = cloneAssignee(s.AssignedTo)
	out.Tags = cloneTags(s.Tags)
	return out
}

func cloneAssignee(a *Assignee) *Assignee {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
