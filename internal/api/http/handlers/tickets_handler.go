package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/KP-1306/vaiyu-sub006/internal/api/dto"
	"github.com/KP-1306/vaiyu-sub006/internal/auth"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
	"github.com/KP-1306/vaiyu-sub006/internal/service"
	apperrors "github.com/KP-1306/vaiyu-sub006/pkg/util"
)

// TicketsHandler serves the guest-facing ticket endpoints. Every route is
// stay-scoped: a guest can only touch tickets linked to their own stay.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /guest/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.StayID == nil {
		return apperrors.NewUnauthorized("guest required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.HotelID == "" || req.ServiceID == "" {
		return apperrors.NewValidationError("hotel_id and service_id required", nil)
	}

	input := service.CreateTicketInput{
		HotelID:     req.HotelID,
		ServiceID:   req.ServiceID,
		RoomID:      req.RoomID,
		ZoneID:      req.ZoneID,
		StayID:      principal.StayID,
		Description: req.Description,
		Priority:    req.Priority,
	}
	ticket, err := h.service.Create(c.UserContext(), actorFromPrincipal(c, principal), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /guest/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.StayID == nil {
		return apperrors.NewUnauthorized("guest required")
	}
	filter := repository.TicketFilter{StayID: principal.StayID}
	filter.Limit = parseInt(c.Query("page_size"), 20)
	filter.Offset = (parseInt(c.Query("page"), 1) - 1) * filter.Limit

	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /guest/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.StayID == nil {
		return apperrors.NewUnauthorized("guest required")
	}
	view, err := h.ownedView(c, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(view)})
}

// AddComment POST /guest/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.StayID == nil {
		return apperrors.NewUnauthorized("guest required")
	}
	if _, err := h.ownedView(c, principal); err != nil {
		return err
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" && len(req.Media) == 0 {
		return apperrors.NewValidationError("body or media required", nil)
	}

	event, err := h.service.AppendComment(c.UserContext(), c.Params("id"),
		actorFromPrincipal(c, principal), req.Body, mediaInputs(req.Media))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

// Reopen POST /guest/tickets/:id/reopen. Stay ownership is re-checked inside
// the transition itself.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.StayID == nil {
		return apperrors.NewUnauthorized("guest required")
	}
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)

	view, err := h.service.Transition(c.UserContext(), c.Params("id"), service.ActionReopen,
		actorFromPrincipal(c, principal), service.TransitionParams{Reason: req.Reason})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(view)})
}

// ownedView loads the ticket and verifies the caller's stay owns it.
func (h *TicketsHandler) ownedView(c *fiber.Ctx, principal *auth.Principal) (*service.TicketView, error) {
	view, err := h.service.GetTicketView(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if view.Ticket.StayID == nil || *view.Ticket.StayID != *principal.StayID {
		// hide existence from other stays
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": c.Params("id")})
	}
	return view, nil
}
