package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-io/ticketdesk/internal/api/dto"
	"github.com/helpdesk-io/ticketdesk/internal/domain"
	"github.com/helpdesk-io/ticketdesk/internal/repository"
	"github.com/helpdesk-io/ticketdesk/internal/service"
	apperrors "github.com/helpdesk-io/ticketdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket CRUD and stats endpoints.
type TicketsHandler struct {
	service  *service.TicketService
	validate *validator.Validate
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{
		service:  ticketService,
		validate: validator.New(),
	}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(items)
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid ticket fields", validationDetails(err))
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.TicketCategory(req.Category),
		Priority:    domain.TicketPriority(req.Priority),
		Status:      domain.TicketStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket))
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Category != nil {
		category := domain.TicketCategory(*req.Category)
		patch.Category = &category
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		patch.Status = &status
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if v := c.Query("category"); v != "" {
		category := domain.TicketCategory(v)
		filter.Category = &category
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.TicketPriority(v)
		filter.Priority = &priority
	}
	if v := c.Query("status"); v != "" {
		status := domain.TicketStatus(v)
		filter.Status = &status
	}
	if v := c.Query("search"); v != "" {
		search := v
		filter.Search = &search
	}
	return filter
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return details
}
