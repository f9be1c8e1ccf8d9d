package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/KP-1306/vaiyu-sub006/internal/api/dto"
	"github.com/KP-1306/vaiyu-sub006/internal/auth"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/queue"
	"github.com/KP-1306/vaiyu-sub006/internal/service"
	apperrors "github.com/KP-1306/vaiyu-sub006/pkg/util"
)

// ImportsHandler accepts bulk booking uploads and exposes an on-demand
// drain for operators who do not want to wait for the next scheduled run.
type ImportsHandler struct {
	imports *service.ImportService
	runner  *queue.Runner[domain.ImportRow]
	bounded queue.BoundedConfig
}

// NewImportsHandler constructs handler.
func NewImportsHandler(imports *service.ImportService, runner *queue.Runner[domain.ImportRow], bounded queue.BoundedConfig) *ImportsHandler {
	return &ImportsHandler{imports: imports, runner: runner, bounded: bounded}
}

// Submit POST /staff/imports. Rows are accepted into the pending pool; the
// 202 tells the caller processing happens asynchronously.
func (h *ImportsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.ImportSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hotelID := req.HotelID
	if hotelID == "" {
		hotelID = principal.Staff.HotelID
	}
	if hotelID != principal.Staff.HotelID {
		return apperrors.NewForbidden("cannot import into another hotel")
	}

	inputs := make([]service.ImportRowInput, 0, len(req.Rows))
	for _, row := range req.Rows {
		inputs = append(inputs, service.ImportRowInput{
			GroupID:    row.GroupID,
			GuestName:  row.GuestName,
			GuestEmail: row.GuestEmail,
			RoomNumber: row.RoomNumber,
			CheckIn:    row.CheckIn,
			CheckOut:   row.CheckOut,
			IsPrimary:  row.IsPrimary,
		})
	}

	rows, err := h.imports.Submit(c.UserContext(), hotelID, actorFromPrincipal(c, principal), inputs)
	if err != nil {
		return err
	}
	items := make([]dto.ImportRowResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.ImportRowResponse{
			ID:         row.ID,
			GroupID:    row.GroupID,
			GuestEmail: row.GuestEmail,
			RoomNumber: row.RoomNumber,
			Status:     row.Status,
		})
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": items})
}

// Run POST /staff/imports/run. One bounded drain under the same budget the
// scheduled worker uses.
func (h *ImportsHandler) Run(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}

	summary, err := h.runner.RunBounded(c.UserContext(), h.bounded)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.ImportRunResponse{
		Batches:   summary.Batches,
		Claimed:   summary.Claimed,
		Processed: summary.Processed,
		Failed:    summary.Failed,
		Drained:   summary.Drained,
	}})
}
