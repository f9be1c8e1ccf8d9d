package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/api/dto"
	"github.com/KP-1306/vaiyu-sub006/internal/auth"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
	apperrors "github.com/KP-1306/vaiyu-sub006/pkg/util"
)

// StaffHandler serves operator account endpoints: login, availability, the
// department roster, and stay-scoped guest token issuance at check-in.
type StaffHandler struct {
	store  repository.Datastore
	tokens *auth.TokenManager
}

// NewStaffHandler constructs handler.
func NewStaffHandler(store repository.Datastore, tokens *auth.TokenManager) *StaffHandler {
	return &StaffHandler{store: store, tokens: tokens}
}

// Login POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	staff, err := h.store.Staff().GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.MapError(err)
	}
	if !staff.Active {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(staff.PasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateStaffToken(staff.ID, domain.ActorTypeStaff, staff.Role)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{Token: token, ExpiresAt: expiresAt}})
}

// SetAvailability POST /staff/availability. Toggles whether the caller is
// eligible for auto-assignment.
func (h *StaffHandler) SetAvailability(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff := principal.Staff
	staff.Available = req.Available
	if err := h.store.Staff().Update(c.UserContext(), staff); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": staffSummary(staff)})
}

// ListMembers GET /staff/members. Supervisor view of the hotel roster.
func (h *StaffHandler) ListMembers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	hotelID := principal.Staff.HotelID
	filter := repository.StaffFilter{HotelID: &hotelID}
	if dept := c.Query("department_id"); dept != "" {
		filter.DepartmentID = &dept
	}
	filter.Limit = parseInt(c.Query("page_size"), 100)
	filter.Offset = (parseInt(c.Query("page"), 1) - 1) * filter.Limit

	members, err := h.store.Staff().List(c.UserContext(), filter)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.StaffSummary, 0, len(members))
	for i := range members {
		items = append(items, staffSummary(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// IssueGuestToken POST /staff/stays/:id/guest-token. Front desk mints the
// stay-scoped token handed to the guest at check-in.
func (h *StaffHandler) IssueGuestToken(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	stay, err := h.store.Stays().GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("stay", map[string]any{"stay_id": c.Params("id")})
		}
		return apperrors.MapError(err)
	}
	if stay.HotelID != principal.Staff.HotelID {
		return apperrors.NewNotFound("stay", map[string]any{"stay_id": c.Params("id")})
	}

	token, expiresAt, err := h.tokens.GenerateGuestToken(stay.GuestID, stay.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.GuestTokenResponse{
		StayID:    stay.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}

func staffSummary(staff *domain.StaffMember) dto.StaffSummary {
	return dto.StaffSummary{
		ID:           staff.ID,
		HotelID:      staff.HotelID,
		DepartmentID: staff.DepartmentID,
		Name:         staff.Name,
		Email:        staff.Email,
		Role:         staff.Role,
		Available:    staff.Available,
		Active:       staff.Active,
	}
}
