package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/cache"
	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
	"github.com/spec-kit/ticket-dashboard/internal/query"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util"
)

// TicketService exposes the query and lookup contracts to callers. It adds
// retrieval latency, the shared page cache, logging and metrics around the
// query engine.
type TicketService struct {
	engine  *query.Engine
	pages   *cache.TicketPageCache
	latency time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Engine  *query.Engine
	Cache   *cache.TicketPageCache
	Latency time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		engine:  deps.Engine,
		pages:   deps.Cache,
		latency: deps.Latency,
		logger:  logger,
		metrics: deps.Metrics,
	}
}

// ListTickets returns one page of tickets matching filters.
func (s *TicketService) ListTickets(ctx context.Context, filters domain.TicketFilters, page, perPage int) (*domain.TicketPage, error) {
	if s.pages.Enabled() {
		cached, ok := s.pages.Get(ctx, filters, page, perPage)
		s.metrics.RecordCacheLookup("redis", ok)
		if ok {
			s.metrics.RecordQuery("list", "ok")
			return cached, nil
		}
	}

	if err := s.wait(ctx); err != nil {
		s.metrics.RecordQuery("list", "RETRIEVAL_FAILED")
		return nil, err
	}

	result, err := s.engine.Query(ctx, filters, page, perPage)
	if err != nil {
		code := apperrors.ToDomainError(err).Code
		s.metrics.RecordQuery("list", code)
		s.logger.Warn("list tickets failed",
			zap.String("priority", string(filters.Priority)),
			zap.String("status", string(filters.Status)),
			zap.Int("page", page),
			zap.Int("per_page", perPage),
			zap.String("code", code),
			zap.Error(err))
		return nil, err
	}

	s.pages.Set(ctx, filters, page, perPage, result)
	s.metrics.RecordQuery("list", "ok")
	s.logger.Debug("listed tickets",
		zap.String("priority", string(filters.Priority)),
		zap.String("status", string(filters.Status)),
		zap.Int("page", page),
		zap.Int("returned", len(result.Tickets)),
		zap.Int("total", result.Pagination.TotalItems))
	return result, nil
}

// GetTicket returns the complete ticket record for the detail view.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := s.wait(ctx); err != nil {
		s.metrics.RecordQuery("get", "RETRIEVAL_FAILED")
		return nil, err
	}
	ticket, err := s.engine.FindByID(ctx, id)
	if err != nil {
		code := apperrors.ToDomainError(err).Code
		s.metrics.RecordQuery("get", code)
		if code != "NOT_FOUND" {
			s.logger.Warn("get ticket failed", zap.String("ticket_id", id), zap.Error(err))
		}
		return nil, err
	}
	s.metrics.RecordQuery("get", "ok")
	return ticket, nil
}

// wait sleeps for the configured retrieval latency unless ctx ends first.
func (s *TicketService) wait(ctx context.Context) error {
	if s.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, err)
		}
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrRetrievalFailed, ctx.Err())
	case <-timer.C:
		return nil
	}
}
