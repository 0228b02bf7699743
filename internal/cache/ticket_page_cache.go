package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

const keyPrefix = "tickets:page"

// TicketPageCache is a read-through Redis cache for list query results.
// A nil client disables it; every lookup then misses.
type TicketPageCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTicketPageCache constructs the cache.
func NewTicketPageCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TicketPageCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketPageCache{client: client, ttl: ttl, logger: logger}
}

// Enabled reports whether lookups can ever hit.
func (c *TicketPageCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Key builds the cache key for a query.
func Key(filters domain.TicketFilters, page, perPage int) string {
	priority := string(filters.Priority)
	if priority == "" {
		priority = "*"
	}
	status := string(filters.Status)
	if status == "" {
		status = "*"
	}
	return fmt.Sprintf("%s:%s:%s:%d:%d", keyPrefix, priority, status, page, perPage)
}

// Get returns the cached page, if any. Redis failures are logged and treated
// as a miss.
func (c *TicketPageCache) Get(ctx context.Context, filters domain.TicketFilters, page, perPage int) (*domain.TicketPage, bool) {
	if !c.Enabled() {
		return nil, false
	}
	key := Key(filters, page, perPage)
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("ticket page cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var cached cachedPage
	if err := json.Unmarshal(val, &cached); err != nil {
		c.logger.Warn("ticket page cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return cached.toDomain(), true
}

// Set stores a page under its query key.
func (c *TicketPageCache) Set(ctx context.Context, filters domain.TicketFilters, page, perPage int, result *domain.TicketPage) {
	if !c.Enabled() || result == nil {
		return
	}
	key := Key(filters, page, perPage)
	data, err := json.Marshal(fromDomain(result))
	if err != nil {
		c.logger.Warn("ticket page cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("ticket page cache set failed", zap.String("key", key), zap.Error(err))
	}
}

type cachedAssignee struct {
	Name      string `json:"name"`
	AvatarRef string `json:"avatar_ref"`
}

type cachedSummary struct {
	ID              string                `json:"id"`
	Subject         string                `json:"subject"`
	Priority        domain.TicketPriority `json:"priority"`
	Status          domain.TicketStatus   `json:"status"`
	DateCreated     time.Time             `json:"date_created"`
	LastUpdate      time.Time             `json:"last_update"`
	CustomerName    string                `json:"customer_name"`
	CustomerEmail   string                `json:"customer_email"`
	CustomerCompany string                `json:"customer_company"`
	AssignedTo      *cachedAssignee       `json:"assigned_to,omitempty"`
	Tags            []string              `json:"tags"`
}

type cachedPage struct {
	Tickets      []cachedSummary `json:"tickets"`
	CurrentPage  int             `json:"current_page"`
	TotalPages   int             `json:"total_pages"`
	TotalItems   int             `json:"total_items"`
	ItemsPerPage int             `json:"items_per_page"`
}

func fromDomain(p *domain.TicketPage) cachedPage {
	out := cachedPage{
		Tickets:      make([]cachedSummary, 0, len(p.Tickets)),
		CurrentPage:  p.Pagination.CurrentPage,
		TotalPages:   p.Pagination.TotalPages,
		TotalItems:   p.Pagination.TotalItems,
		ItemsPerPage: p.Pagination.ItemsPerPage,
	}
	for _, t := range p.Tickets {
		item := cachedSummary{
			ID:              t.ID,
			Subject:         t.Subject,
			Priority:        t.Priority,
			Status:          t.Status,
			DateCreated:     t.DateCreated,
			LastUpdate:      t.LastUpdate,
			CustomerName:    t.Customer.Name,
			CustomerEmail:   t.Customer.Email,
			CustomerCompany: t.Customer.Company,
			Tags:            t.Tags,
		}
		if t.AssignedTo != nil {
			item.AssignedTo = &cachedAssignee{Name: t.AssignedTo.Name, AvatarRef: t.AssignedTo.AvatarRef}
		}
		out.Tickets = append(out.Tickets, item)
	}
	return out
}

func (c cachedPage) toDomain() *domain.TicketPage {
	out := &domain.TicketPage{
		Tickets: make([]domain.TicketSummary, 0, len(c.Tickets)),
		Pagination: domain.PaginationInfo{
			CurrentPage:  c.CurrentPage,
			TotalPages:   c.TotalPages,
			TotalItems:   c.TotalItems,
			ItemsPerPage: c.ItemsPerPage,
		},
	}
	for _, t := range c.Tickets {
		item := domain.TicketSummary{
			ID:          t.ID,
			Subject:     t.Subject,
			Priority:    t.Priority,
			Status:      t.Status,
			DateCreated: t.DateCreated,
			LastUpdate:  t.LastUpdate,
			Customer: domain.Customer{
				Name:    t.CustomerName,
				Email:   t.CustomerEmail,
				Company: t.CustomerCompany,
			},
			Tags: t.Tags,
		}
		if item.Tags == nil {
			item.Tags = []string{}
		}
		if t.AssignedTo != nil {
			item.AssignedTo = &domain.Assignee{Name: t.AssignedTo.Name, AvatarRef: t.AssignedTo.AvatarRef}
		}
		out.Tickets = append(out.Tickets, item)
	}
	return out
}
