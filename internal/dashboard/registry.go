package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/clock"
)

// Factory builds a controller for a new session.
type Factory func(sessionID string) *Controller

type session struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry tracks the open dashboards of an application, one per session id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  Factory
	clock    clock.Clock
	logger   *zap.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(factory Factory, clk clock.Clock, logger *zap.Logger) *Registry {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*session),
		factory:  factory,
		clock:    clk,
		logger:   logger,
	}
}

// Create opens and mounts a new dashboard.
func (r *Registry) Create() (string, *Controller) {
	id := uuid.NewString()
	ctrl := r.factory(id)

	r.mu.Lock()
	r.sessions[id] = &session{controller: ctrl, lastSeen: r.clock.Now()}
	r.mu.Unlock()

	ctrl.Mount()
	r.logger.Debug("dashboard session opened", zap.String("session_id", id))
	return id, ctrl
}

// Get returns the dashboard for id and marks the session as used.
func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.clock.Now()
	return s.controller, true
}

// Remove closes and forgets the dashboard for id.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.controller.Close()
	r.logger.Debug("dashboard session closed", zap.String("session_id", id))
	return true
}

// EvictIdle closes sessions unused for at least maxIdle and returns how many
// were removed.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	now := r.clock.Now()
	var stale []*Controller

	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) >= maxIdle {
			stale = append(stale, s.controller)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
	return len(stale)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.controller.Close()
	}
}
