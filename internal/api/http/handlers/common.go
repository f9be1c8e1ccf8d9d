package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/KP-1306/vaiyu-sub006/internal/api/dto"
	"github.com/KP-1306/vaiyu-sub006/internal/auth"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/service"
)

func actorFromPrincipal(c *fiber.Ctx, principal *auth.Principal) service.Actor {
	actorType := principal.Type
	if principal.Staff != nil && actorType == "" {
		actorType = domain.ActorTypeStaff
	}
	return service.Actor{
		Type:      actorType,
		ID:        principal.ActorID(),
		StayID:    principal.StayID,
		ClientIP:  c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		DisplayCode:  ticket.DisplayCode,
		HotelID:      ticket.HotelID,
		DepartmentID: ticket.DepartmentID,
		Title:        ticket.Title,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		AssigneeID:   ticket.AssigneeID,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(view *service.TicketView) dto.TicketDetailResponse {
	t := view.Ticket
	eventsResp := make([]dto.EventResponse, 0, len(view.Events))
	for i := range view.Events {
		eventsResp = append(eventsResp, eventResponse(&view.Events[i]))
	}
	return dto.TicketDetailResponse{
		ID:           t.ID,
		DisplayCode:  t.DisplayCode,
		HotelID:      t.HotelID,
		ServiceID:    t.ServiceID,
		DepartmentID: t.DepartmentID,
		StayID:       t.StayID,
		RoomID:       t.RoomID,
		ZoneID:       t.ZoneID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		CreatorType:  t.CreatorType,
		AssigneeID:   t.AssigneeID,
		ReopenCount:  view.ReopenCount,
		SLA: dto.SLAResponse{
			PolicyID:             view.SLA.PolicyID,
			TargetMinutes:        view.SLA.TargetMinutes,
			Running:              view.SLA.Running,
			ElapsedActiveSeconds: int64(view.SLA.ElapsedActive.Seconds()),
			RemainingSeconds:     int64(view.SLA.Remaining.Seconds()),
			TotalPausedSeconds:   view.SLA.TotalPausedSeconds,
			Breached:             view.SLA.Breached,
		},
		Events:      eventsResp,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
		CancelledAt: t.CancelledAt,
	}
}

func eventResponse(event *domain.TicketEvent) dto.EventResponse {
	media := make([]dto.MediaResponse, 0, len(event.Media))
	for _, m := range event.Media {
		media = append(media, dto.MediaResponse{
			ID:        m.ID,
			FileName:  m.FileName,
			MimeType:  m.MimeType,
			SizeBytes: m.SizeBytes,
		})
	}
	return dto.EventResponse{
		ID:        event.ID,
		Type:      event.Type,
		ActorType: event.ActorType,
		ActorID:   event.ActorID,
		OldStatus: event.OldStatus,
		NewStatus: event.NewStatus,
		Comment:   event.Comment,
		Media:     media,
		CreatedAt: event.CreatedAt,
	}
}

func mediaInputs(reqs []dto.MediaRequest) []service.MediaInput {
	inputs := make([]service.MediaInput, 0, len(reqs))
	for _, m := range reqs {
		inputs = append(inputs, service.MediaInput{
			StorageKey: m.StorageKey,
			FileName:   m.FileName,
			MimeType:   m.MimeType,
			SizeBytes:  m.SizeBytes,
		})
	}
	return inputs
}
