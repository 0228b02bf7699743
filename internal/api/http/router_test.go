package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ticket-dashboard/internal/api/dto"
	"github.com/spec-kit/ticket-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dashboard/internal/clock"
	"github.com/spec-kit/ticket-dashboard/internal/dashboard"
	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
	"github.com/spec-kit/ticket-dashboard/internal/query"
	"github.com/spec-kit/ticket-dashboard/internal/repository"
	"github.com/spec-kit/ticket-dashboard/internal/service"
)

// fixture has 50 tickets, seven of them urgent.
func fixture() []domain.Ticket {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tickets := make([]domain.Ticket, 0, 50)
	for i := 1; i <= 50; i++ {
		priority := domain.TicketPriorityMedium
		if i%7 == 0 {
			priority = domain.TicketPriorityUrgent
		}
		tickets = append(tickets, domain.Ticket{
			ID:          fmt.Sprintf("TKT-%04d", i),
			Subject:     "subject",
			Description: fmt.Sprintf("description %d", i),
			Priority:    priority,
			Status:      domain.TicketStatusOpen,
			DateCreated: base.Add(-time.Duration(i) * time.Minute),
			LastUpdate:  base,
			Tags:        []string{"support"},
		})
	}
	return tickets
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repo, err := repository.NewMemoryTicketRepository(fixture())
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	tickets := service.NewTicketService(service.TicketDependencies{
		Engine:  query.NewEngine(repo),
		Logger:  logger,
		Metrics: metrics,
	})
	clk := clock.NewSystem()
	sessions := dashboard.NewRegistry(func(id string) *dashboard.Controller {
		return dashboard.New(tickets, dashboard.WithSessionID(id), dashboard.WithClock(clk), dashboard.WithLogger(logger))
	}, clk, logger)
	t.Cleanup(sessions.CloseAll)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:    handlers.NewHealthHandler("ticket-dashboard", "test", nil),
		Tickets:   handlers.NewTicketsHandler(tickets, 10),
		Dashboard: handlers.NewDashboardHandler(sessions),
		Metrics:   metrics,
	})
	return app
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func TestTicketsRoutes_List(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/tickets?priority=urgent", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	page := decode[envelope[dto.TicketPageResponse]](t, resp).Data
	assert.Len(t, page.Tickets, 7)
	assert.Equal(t, dto.PaginationResponse{CurrentPage: 1, TotalPages: 1, TotalItems: 7, ItemsPerPage: 10}, page.Pagination)

	resp = do(t, app, http.MethodGet, "/tickets?page=6", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = decode[envelope[dto.TicketPageResponse]](t, resp).Data
	assert.Empty(t, page.Tickets)
	assert.NotNil(t, page.Tickets)
	assert.Equal(t, 5, page.Pagination.TotalPages)
	assert.Equal(t, 50, page.Pagination.TotalItems)
}

func TestTicketsRoutes_HugePageIsEmpty(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/tickets?page=922337203685477582", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[envelope[dto.TicketPageResponse]](t, resp).Data
	assert.Empty(t, page.Tickets)
	assert.Equal(t, 50, page.Pagination.TotalItems)

	resp = do(t, app, http.MethodPost, "/dashboard/sessions?wait=true", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[envelope[dto.DashboardResponse]](t, resp).Data.SessionID

	resp = do(t, app, http.MethodPut, "/dashboard/sessions/"+id+"/page?wait=true", `{"page":922337203685477582}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[envelope[dto.DashboardResponse]](t, resp).Data
	assert.Equal(t, dashboard.StateSuccess, view.Status.State)
	assert.Empty(t, view.Tickets)
	assert.Equal(t, 922337203685477582, view.Page)
}

func TestTicketsRoutes_RejectsInvalidQuery(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{
		"/tickets?priority=critical",
		"/tickets?status=pending",
		"/tickets?page=0",
		"/tickets?page=abc",
		"/tickets?page_size=0",
		"/tickets?page_size=1000",
	} {
		resp := do(t, app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.Equal(t, "INVALID_ARGUMENT", decode[errorBody](t, resp).Error.Code, target)
	}
}

func TestTicketsRoutes_Get(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/tickets/TKT-0003", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[envelope[dto.TicketDetailResponse]](t, resp).Data
	assert.Equal(t, "TKT-0003", detail.ID)
	assert.Equal(t, "description 3", detail.Description)

	resp = do(t, app, http.MethodGet, "/tickets/TKT-9999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, resp).Error.Code)
}

func TestRoutes_UnknownPath(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, resp).Error.Code)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health/live", "").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health/ready", "").StatusCode)
	do(t, app, http.MethodGet, "/tickets", "")

	resp := do(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "ticket_queries_total")
}

func TestDashboardRoutes_Flow(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/dashboard/sessions?wait=true", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decode[envelope[dto.DashboardResponse]](t, resp).Data
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, dashboard.StateSuccess, view.Status.State)
	assert.Len(t, view.Tickets, 10)
	assert.Equal(t, 5, view.Pagination.TotalPages)
	base := "/dashboard/sessions/" + view.SessionID

	resp = do(t, app, http.MethodPut, base+"/page?wait=true", `{"page":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[envelope[dto.DashboardResponse]](t, resp).Data
	assert.Equal(t, 3, view.Page)
	assert.Equal(t, "TKT-0021", view.Tickets[0].ID)

	resp = do(t, app, http.MethodPut, base+"/filters?wait=true", `{"priority":"urgent"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[envelope[dto.DashboardResponse]](t, resp).Data
	assert.Equal(t, 1, view.Page)
	assert.True(t, view.HasActiveFilters)
	assert.Len(t, view.Tickets, 7)
	assert.Equal(t, "urgent", view.Filters.Priority)

	resp = do(t, app, http.MethodPut, base+"/filters", `{"priority":"critical"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, base+"/selection", `{"ticket_id":"TKT-9999"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[envelope[dto.DashboardResponse]](t, resp).Data
	assert.False(t, view.DetailOpen)
	assert.Equal(t, dashboard.NoticeTicketNotFound, view.Notice)

	resp = do(t, app, http.MethodPost, base+"/selection", `{"ticket_id":"TKT-0007"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[envelope[dto.DashboardResponse]](t, resp).Data
	assert.True(t, view.DetailOpen)
	require.NotNil(t, view.Selection)
	assert.Equal(t, "description 7", view.Selection.Description)

	resp = do(t, app, http.MethodDelete, base+"/selection", "")
	view = decode[envelope[dto.DashboardResponse]](t, resp).Data
	assert.False(t, view.DetailOpen)
	assert.Nil(t, view.Selection)

	resp = do(t, app, http.MethodDelete, base+"/filters?wait=true", "")
	view = decode[envelope[dto.DashboardResponse]](t, resp).Data
	assert.False(t, view.HasActiveFilters)
	assert.Len(t, view.Tickets, 10)

	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, base, "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, base, "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodDelete, base, "").StatusCode)
}

func TestDashboardRoutes_UnknownSession(t *testing.T) {
	app := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/dashboard/sessions/missing/refresh", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, resp).Error.Code)
}
