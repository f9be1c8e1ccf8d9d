package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/KP-1306/vaiyu-sub006/internal/api/dto"
	"github.com/KP-1306/vaiyu-sub006/internal/auth"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
	"github.com/KP-1306/vaiyu-sub006/internal/service"
	apperrors "github.com/KP-1306/vaiyu-sub006/pkg/util"
)

// StaffTicketsHandler serves the operator ticket endpoints. Routes are
// hotel-scoped through the staff principal.
type StaffTicketsHandler struct {
	service *service.TicketService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService) *StaffTicketsHandler {
	return &StaffTicketsHandler{service: ticketService}
}

// CreateTicket POST /staff/tickets. Used by front desk to raise a ticket on
// a guest's behalf.
func (h *StaffTicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ServiceID == "" {
		return apperrors.NewValidationError("service_id required", nil)
	}

	input := service.CreateTicketInput{
		HotelID:     principal.Staff.HotelID,
		ServiceID:   req.ServiceID,
		RoomID:      req.RoomID,
		ZoneID:      req.ZoneID,
		StayID:      req.StayID,
		Description: req.Description,
		Priority:    req.Priority,
	}
	ticket, err := h.service.Create(c.UserContext(), actorFromPrincipal(c, principal), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /staff/tickets.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	filter := parseStaffTicketQuery(c)
	hotelID := principal.Staff.HotelID
	filter.HotelID = &hotelID

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

// GetTicket GET /staff/tickets/:id.
func (h *StaffTicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	view, err := h.service.GetTicketView(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if view.Ticket.HotelID != principal.Staff.HotelID {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": c.Params("id")})
	}
	return c.JSON(fiber.Map{"data": ticketDetail(view)})
}

// Transition POST /staff/tickets/:id/transitions.
func (h *StaffTicketsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	action := service.Action(strings.ToLower(strings.TrimSpace(req.Action)))
	if !service.ValidAction(action) {
		return apperrors.NewValidationError("unknown action", map[string]any{"action": req.Action})
	}

	// hotel scope check before mutating
	view, err := h.service.GetTicketView(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if view.Ticket.HotelID != principal.Staff.HotelID {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": c.Params("id")})
	}

	updated, err := h.service.Transition(c.UserContext(), c.Params("id"), action,
		actorFromPrincipal(c, principal),
		service.TransitionParams{AssigneeID: req.AssigneeID, Reason: req.Reason})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(updated)})
}

// AddComment POST /staff/tickets/:id/comments.
func (h *StaffTicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.service.AppendComment(c.UserContext(), c.Params("id"),
		actorFromPrincipal(c, principal), req.Body, mediaInputs(req.Media))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

func parseStaffTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if dept := c.Query("department_id"); dept != "" {
		filter.DepartmentID = &dept
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if stay := c.Query("stay_id"); stay != "" {
		filter.StayID = &stay
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Limit = pageSize
	filter.Offset = (parseInt(c.Query("page"), 1) - 1) * pageSize
	return filter
}
