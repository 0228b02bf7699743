package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dashboard/internal/api/dto"
	"github.com/spec-kit/ticket-dashboard/internal/domain"
	"github.com/spec-kit/ticket-dashboard/internal/service"
	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util"
)

const maxPageSize = 100

// TicketsHandler serves the query and lookup contracts.
type TicketsHandler struct {
	service         *service.TicketService
	defaultPageSize int
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, defaultPageSize int) *TicketsHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &TicketsHandler{service: ticketService, defaultPageSize: defaultPageSize}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filters, err := parseFilters(c.Query("priority"), c.Query("status"))
	if err != nil {
		return err
	}
	page, err := parseInt(c.Query("page"), "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := parseInt(c.Query("page_size"), "page_size", h.defaultPageSize)
	if err != nil {
		return err
	}
	if pageSize > maxPageSize {
		return apperrors.NewInvalidArgument("page_size too large", map[string]any{"max": maxPageSize})
	}

	result, err := h.service.ListTickets(c.UserContext(), filters, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketPage(result.Tickets, result.Pagination)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// parseFilters treats empty values as absent and rejects unknown ones.
func parseFilters(priority, status string) (domain.TicketFilters, error) {
	var filters domain.TicketFilters
	if priority = strings.TrimSpace(priority); priority != "" {
		p, err := domain.ParsePriority(priority)
		if err != nil {
			return filters, apperrors.NewInvalidArgument("invalid priority", map[string]any{
				"priority": priority,
				"allowed":  domain.AllPriorities,
			})
		}
		filters.Priority = p
	}
	if status = strings.TrimSpace(status); status != "" {
		s, err := domain.ParseStatus(status)
		if err != nil {
			return filters, apperrors.NewInvalidArgument("invalid status", map[string]any{
				"status":  status,
				"allowed": domain.AllStatuses,
			})
		}
		filters.Status = s
	}
	return filters, nil
}

func parseInt(val, name string, def int) (int, error) {
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, apperrors.NewInvalidArgument(name+" must be an integer", map[string]any{name: val})
	}
	return parsed, nil
}
