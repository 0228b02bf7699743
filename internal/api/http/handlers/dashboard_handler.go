package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dashboard/internal/api/dto"
	"github.com/spec-kit/ticket-dashboard/internal/dashboard"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util"
)

// DashboardHandler exposes dashboard sessions to a rendering client. Every
// mutating endpoint answers with the resulting dashboard state; pass
// ?wait=true to block until the triggered retrieval settles.
type DashboardHandler struct {
	sessions *dashboard.Registry
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(sessions *dashboard.Registry) *DashboardHandler {
	return &DashboardHandler{sessions: sessions}
}

// CreateSession POST /dashboard/sessions.
func (h *DashboardHandler) CreateSession(c *fiber.Ctx) error {
	_, ctrl := h.sessions.Create()
	return h.render(c.Status(http.StatusCreated), ctrl)
}

// GetSession GET /dashboard/sessions/:id.
func (h *DashboardHandler) GetSession(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	return h.render(c, ctrl)
}

// DeleteSession DELETE /dashboard/sessions/:id.
func (h *DashboardHandler) DeleteSession(c *fiber.Ctx) error {
	if !h.sessions.Remove(c.Params("id")) {
		return apperrors.NewNotFound("dashboard session", nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetFilters PUT /dashboard/sessions/:id/filters.
func (h *DashboardHandler) SetFilters(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	var req dto.FiltersRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	filters, err := parseFilters(req.Priority, req.Status)
	if err != nil {
		return err
	}
	if err := ctrl.SetFilters(filters); err != nil {
		return controllerError(err)
	}
	return h.render(c, ctrl)
}

// ClearFilters DELETE /dashboard/sessions/:id/filters.
func (h *DashboardHandler) ClearFilters(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	if err := ctrl.ClearFilters(); err != nil {
		return controllerError(err)
	}
	return h.render(c, ctrl)
}

// SetPage PUT /dashboard/sessions/:id/page.
func (h *DashboardHandler) SetPage(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	var req dto.PageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := ctrl.SetPage(req.Page); err != nil {
		return controllerError(err)
	}
	return h.render(c, ctrl)
}

// Refresh POST /dashboard/sessions/:id/refresh.
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	if err := ctrl.Refresh(); err != nil {
		return controllerError(err)
	}
	return h.render(c, ctrl)
}

// SelectTicket POST /dashboard/sessions/:id/selection. A failed lookup is
// reported through the dashboard notice, not as an HTTP error.
func (h *DashboardHandler) SelectTicket(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	var req dto.SelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	id := strings.TrimSpace(req.TicketID)
	if id == "" {
		return apperrors.NewInvalidArgument("ticket_id required", nil)
	}
	if err := ctrl.SelectTicket(c.UserContext(), id); err != nil {
		if errors.Is(err, dashboard.ErrClosed) || errors.Is(err, dashboard.ErrSelectionSuperseded) {
			return controllerError(err)
		}
	}
	return h.render(c, ctrl)
}

// CloseSelection DELETE /dashboard/sessions/:id/selection.
func (h *DashboardHandler) CloseSelection(c *fiber.Ctx) error {
	ctrl, err := h.session(c)
	if err != nil {
		return err
	}
	ctrl.CloseSelection()
	return h.render(c, ctrl)
}

func (h *DashboardHandler) session(c *fiber.Ctx) (*dashboard.Controller, error) {
	id := c.Params("id")
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return nil, apperrors.NewNotFound("dashboard session", map[string]any{"session_id": id})
	}
	return ctrl, nil
}

func (h *DashboardHandler) render(c *fiber.Ctx, ctrl *dashboard.Controller) error {
	if c.QueryBool("wait") {
		if err := ctrl.Settle(c.UserContext()); err != nil {
			return apperrors.NewDomainError("TIMEOUT", "dashboard did not settle in time", http.StatusGatewayTimeout, nil)
		}
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboard(ctrl.Snapshot())})
}

func controllerError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrClosed):
		return apperrors.NewNotFound("dashboard session", nil)
	case errors.Is(err, dashboard.ErrSelectionSuperseded):
		return apperrors.NewDomainError("SELECTION_SUPERSEDED", err.Error(), http.StatusConflict, nil)
	default:
		return err
	}
}
