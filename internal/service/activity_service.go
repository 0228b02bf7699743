package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/events"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
)

// ActivityService records dashboard events in the log and in metrics.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to every dashboard event.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
	a.dispatcher.Subscribe(events.EventStaleResponseDropped, a.handleStaleResponse)
}

func (a *ActivityService) handle(_ context.Context, event events.Event) error {
	a.metrics.RecordDashboardEvent(string(event.Type))

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("session_id", event.SessionID),
		zap.Any("payload", event.Payload),
	}
	switch event.Type {
	case events.EventTicketsLoadFailed:
		a.logger.Warn(string(event.Type), fields...)
	default:
		a.logger.Debug(string(event.Type), fields...)
	}
	return nil
}

func (a *ActivityService) handleStaleResponse(_ context.Context, _ events.Event) error {
	a.metrics.RecordStaleResponse()
	return nil
}
