// Package dashboard holds the per-user dashboard state machine: current
// filters, page, ticket selection and the list retrieval lifecycle.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dashboard/internal/clock"
	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/events"
)

const (
	DefaultItemsPerPage = 10
	DefaultStaleTime    = 5 * time.Minute
)

var (
	ErrClosed              = errors.New("dashboard closed")
	ErrSelectionSuperseded = errors.New("selection superseded by a newer request")
)

// Fetcher performs the asynchronous ticket retrievals a dashboard depends on.
type Fetcher interface {
	ListTickets(ctx context.Context, filters domain.TicketFilters, page, perPage int) (*domain.TicketPage, error)
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithItemsPerPage overrides the page size. Non-positive values are ignored.
func WithItemsPerPage(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithStaleTime sets how long a loaded page is served without refetching.
// Zero disables the cache.
func WithStaleTime(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.staleTime = d
		}
	}
}

// WithClock injects the time source used for cache freshness.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithDispatcher publishes dashboard events to d.
func WithDispatcher(d events.Dispatcher) Option {
	return func(c *Controller) { c.dispatcher = d }
}

// WithSessionID tags events and snapshots with id.
func WithSessionID(id string) Option {
	return func(c *Controller) { c.sessionID = id }
}

type cacheEntry struct {
	page     *domain.TicketPage
	storedAt time.Time
}

// Controller sequences filter, page and selection changes against a Fetcher.
// Every transition happens under one lock, so snapshots are always
// consistent. List retrievals run in the background; a result is applied
// only while its request key is still current and nothing newer was applied.
type Controller struct {
	fetcher    Fetcher
	clock      clock.Clock
	logger     *zap.Logger
	dispatcher events.Dispatcher
	sessionID  string
	perPage    int
	staleTime  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	filters    domain.TicketFilters
	page       int
	generation uint64
	appliedGen uint64
	status     FetchStatus
	data       *domain.TicketPage
	dataKey    RequestKey
	cache      map[RequestKey]cacheEntry
	selection  *domain.Ticket
	detailOpen bool
	notice     string
	selectSeq  uint64
	closed     bool
	// changed is closed and replaced whenever a retrieval settles.
	changed chan struct{}
}

// New constructs an idle controller on page 1 with no filters.
func New(fetcher Fetcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher:   fetcher,
		clock:     clock.NewSystem(),
		logger:    zap.NewNop(),
		perPage:   DefaultItemsPerPage,
		staleTime: DefaultStaleTime,
		ctx:       ctx,
		cancel:    cancel,
		page:      1,
		status:    FetchStatus{State: StateIdle, Key: RequestKey{Page: 1}},
		cache:     make(map[RequestKey]cacheEntry),
		changed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("session_id", c.sessionID))
	return c
}

// Mount starts the first retrieval.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	evts := c.startLocked(false)
	c.mu.Unlock()
	c.publish(evts)
}

// SetFilters replaces the filters wholesale and returns to page 1. Unknown
// enum values are rejected and leave the state untouched.
func (c *Controller) SetFilters(filters domain.TicketFilters) error {
	if err := filters.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.filters = filters
	c.page = 1
	evts := []events.Event{c.event(events.EventFiltersChanged, queryPayload(c.keyLocked()))}
	evts = append(evts, c.startLocked(false)...)
	c.mu.Unlock()
	c.publish(evts)
	return nil
}

// ClearFilters is SetFilters with no criteria.
func (c *Controller) ClearFilters() error {
	return c.SetFilters(domain.TicketFilters{})
}

// SetPage moves to page n, keeping the filters. Pages below 1 are clamped to
// 1; pages past the end load as an empty list.
func (c *Controller) SetPage(n int) error {
	if n < 1 {
		c.logger.Warn("clamping invalid page", zap.Int("page", n))
		n = 1
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.page = n
	evts := []events.Event{c.event(events.EventPageChanged, queryPayload(c.keyLocked()))}
	evts = append(evts, c.startLocked(false)...)
	c.mu.Unlock()
	c.publish(evts)
	return nil
}

// Refresh reloads the current filters and page, bypassing the cache.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	evts := c.startLocked(true)
	c.mu.Unlock()
	c.publish(evts)
	return nil
}

// SelectTicket looks up the full ticket and opens the detail view with it.
// On failure the current selection is kept and a notice is set. A lookup that
// finishes after a newer SelectTicket or CloseSelection is discarded and
// reported as ErrSelectionSuperseded.
func (c *Controller) SelectTicket(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.selectSeq++
	seq := c.selectSeq
	c.mu.Unlock()

	ticket, err := c.fetcher.GetTicket(ctx, id)

	c.mu.Lock()
	if c.closed || seq != c.selectSeq {
		c.mu.Unlock()
		return ErrSelectionSuperseded
	}
	var evt events.Event
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			c.notice = NoticeTicketNotFound
			evt = c.event(events.EventTicketNotFound, events.SelectionPayload{TicketID: id})
		} else {
			c.notice = NoticeTicketLoadFailed
			evt = c.event(events.EventTicketLookupFailed, events.SelectionPayload{TicketID: id})
			c.logger.Warn("ticket lookup failed", zap.String("ticket_id", id), zap.Error(err))
		}
		c.mu.Unlock()
		c.publish([]events.Event{evt})
		return err
	}
	if ticket == nil {
		c.notice = NoticeTicketNotFound
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrTicketNotFound, id)
	}
	selected := ticket.Clone()
	c.selection = &selected
	c.detailOpen = true
	c.notice = ""
	evt = c.event(events.EventTicketSelected, events.SelectionPayload{TicketID: selected.ID})
	c.mu.Unlock()
	c.publish([]events.Event{evt})
	return nil
}

// CloseSelection clears the selection and closes the detail view. It also
// invalidates any lookup still in flight. Calling it repeatedly is harmless.
func (c *Controller) CloseSelection() {
	c.mu.Lock()
	c.selectSeq++
	var evts []events.Event
	if c.selection != nil {
		evts = append(evts, c.event(events.EventSelectionClosed, events.SelectionPayload{TicketID: c.selection.ID}))
	}
	c.selection = nil
	c.detailOpen = false
	c.notice = ""
	c.mu.Unlock()
	c.publish(evts)
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		SessionID:    c.sessionID,
		Filters:      c.filters,
		Page:         c.page,
		ItemsPerPage: c.perPage,
		Status:       c.status,
		Data:         c.data.Clone(),
		DataKey:      c.dataKey,
		DetailOpen:   c.detailOpen,
		Notice:       c.notice,
	}
	if c.selection != nil {
		sel := c.selection.Clone()
		v.Selection = &sel
	}
	return v
}

// Wait blocks until every list retrieval started so far has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Settle blocks until no retrieval for the current key is in flight, the
// dashboard is closed, or ctx ends.
func (c *Controller) Settle(ctx context.Context) error {
	for {
		c.mu.Lock()
		pending := !c.closed && c.status.State == StateLoading
		changed := c.changed
		c.mu.Unlock()
		if !pending {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close unmounts the dashboard. In-flight retrievals are cancelled and their
// results discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	c.selectSeq++
	c.broadcastLocked()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Controller) keyLocked() RequestKey {
	return RequestKey{Filters: c.filters, Page: c.page}
}

// startLocked begins a retrieval cycle for the current key. A fresh cache
// entry is applied immediately and skips the loading state.
func (c *Controller) startLocked(bypassCache bool) []events.Event {
	key := c.keyLocked()
	c.generation++
	gen := c.generation

	if !bypassCache {
		if entry, ok := c.freshLocked(key); ok {
			c.appliedGen = gen
			c.data = entry.page.Clone()
			c.dataKey = key
			c.status = FetchStatus{State: StateSuccess, Key: key, FromCache: true}
			return []events.Event{c.event(events.EventTicketsLoaded, events.TicketsLoadedPayload{
				QueryPayload: queryPayload(key),
				TotalItems:   entry.page.Pagination.TotalItems,
				FromCache:    true,
			})}
		}
	}

	c.status = FetchStatus{State: StateLoading, Key: key}
	c.wg.Add(1)
	go c.fetch(gen, key)
	return nil
}

func (c *Controller) freshLocked(key RequestKey) (cacheEntry, bool) {
	if c.staleTime <= 0 {
		return cacheEntry{}, false
	}
	entry, ok := c.cache[key]
	if !ok {
		return cacheEntry{}, false
	}
	if c.clock.Now().Sub(entry.storedAt) >= c.staleTime {
		delete(c.cache, key)
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Controller) fetch(gen uint64, key RequestKey) {
	defer c.wg.Done()
	result, err := c.fetcher.ListTickets(c.ctx, key.Filters, key.Page, c.perPage)

	c.mu.Lock()
	evts := c.completeLocked(gen, key, result, err)
	c.broadcastLocked()
	c.mu.Unlock()
	c.publish(evts)
}

func (c *Controller) completeLocked(gen uint64, key RequestKey, result *domain.TicketPage, err error) []events.Event {
	if c.closed {
		return nil
	}
	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty response", domain.ErrRetrievalFailed)
	}
	if err == nil && c.staleTime > 0 {
		c.cache[key] = cacheEntry{page: result.Clone(), storedAt: c.clock.Now()}
	}

	if key != c.keyLocked() || gen <= c.appliedGen {
		c.logger.Debug("dropping stale response",
			zap.Uint64("generation", gen),
			zap.Uint64("applied_generation", c.appliedGen),
			zap.String("priority", string(key.Filters.Priority)),
			zap.String("status", string(key.Filters.Status)),
			zap.Int("page", key.Page))
		return []events.Event{c.event(events.EventStaleResponseDropped, queryPayload(key))}
	}
	c.appliedGen = gen

	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			c.logger.Error("dashboard issued an invalid query", zap.Error(err))
		}
		c.status = FetchStatus{State: StateError, Key: key, Reason: ReasonLoadFailed, Err: err}
		return []events.Event{c.event(events.EventTicketsLoadFailed, events.TicketsLoadFailedPayload{
			QueryPayload: queryPayload(key),
			Reason:       err.Error(),
		})}
	}

	c.data = result.Clone()
	c.dataKey = key
	c.status = FetchStatus{State: StateSuccess, Key: key}
	return []events.Event{c.event(events.EventTicketsLoaded, events.TicketsLoadedPayload{
		QueryPayload: queryPayload(key),
		TotalItems:   result.Pagination.TotalItems,
	})}
}

func (c *Controller) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *Controller) event(t events.EventType, payload interface{}) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: c.sessionID,
		Timestamp: c.clock.Now(),
		Payload:   payload,
	}
}

func (c *Controller) publish(evts []events.Event) {
	if c.dispatcher == nil {
		return
	}
	for _, evt := range evts {
		_ = c.dispatcher.Publish(context.Background(), evt)
	}
}

func queryPayload(key RequestKey) events.QueryPayload {
	return events.QueryPayload{
		Priority: key.Filters.Priority,
		Status:   key.Filters.Status,
		Page:     key.Page,
	}
}
