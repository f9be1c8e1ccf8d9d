package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/audit"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/events"
	"github.com/KP-1306/vaiyu-sub006/internal/observability"
	"github.com/KP-1306/vaiyu-sub006/internal/queue"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
	apperrors "github.com/KP-1306/vaiyu-sub006/pkg/util"
)

// ImportRowInput is one row of a bulk booking upload. Rows sharing a
// GroupID belong to the same booking; leave GroupID empty to let the
// service group the row alone.
type ImportRowInput struct {
	GroupID    string
	GuestName  string
	GuestEmail string
	RoomNumber string
	CheckIn    time.Time
	CheckOut   time.Time
	IsPrimary  bool
}

// ImportService accepts bulk booking uploads into the pending pool and is
// the queue specialization that drains it: claim a batch, create a stay per
// row, notify, and record per-row terminal status. Failed rows never block
// their batch.
type ImportService struct {
	store      repository.Datastore
	dispatcher events.Dispatcher
	auditor    *audit.Recorder
	lease      time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewImportService builds the service.
func NewImportService(store repository.Datastore, dispatcher events.Dispatcher, auditor *audit.Recorder, lease time.Duration, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		store:      store,
		dispatcher: dispatcher,
		auditor:    auditor,
		lease:      lease,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit validates and stores upload rows as PENDING. Processing is
// asynchronous; the response tells the caller only that the rows were
// accepted into the pool.
func (s *ImportService) Submit(ctx context.Context, hotelID string, actor Actor, inputs []ImportRowInput) ([]domain.ImportRow, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("no rows in upload", nil)
	}
	if _, err := s.store.Catalog().GetHotel(ctx, hotelID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("hotel", map[string]any{"hotel_id": hotelID})
		}
		return nil, apperrors.MapError(err)
	}

	rows := make([]domain.ImportRow, 0, len(inputs))
	for i, in := range inputs {
		if err := validateImportRow(i, in); err != nil {
			return nil, err
		}
		groupID := in.GroupID
		if groupID == "" {
			groupID = uuid.NewString()
		}
		rows = append(rows, domain.ImportRow{
			HotelID:    hotelID,
			GroupID:    groupID,
			GuestName:  strings.TrimSpace(in.GuestName),
			GuestEmail: strings.ToLower(strings.TrimSpace(in.GuestEmail)),
			RoomNumber: strings.TrimSpace(in.RoomNumber),
			CheckIn:    in.CheckIn,
			CheckOut:   in.CheckOut,
			IsPrimary:  in.IsPrimary,
		})
	}

	err := s.store.WithTx(ctx, func(ds repository.Datastore) error {
		return ds.Imports().InsertRows(ctx, rows)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.auditor != nil {
		hotel := hotelID
		s.auditor.Record(ctx, domain.AuditEntry{
			Action:     "import.submit",
			ActorType:  actor.Type,
			ActorID:    actor.ID,
			HotelID:    &hotel,
			EntityType: "booking_import",
			EntityID:   rows[0].GroupID,
			Metadata:   map[string]any{"row_count": len(rows)},
			ClientIP:   actor.ClientIP,
			UserAgent:  actor.UserAgent,
		})
	}
	return rows, nil
}

func validateImportRow(i int, in ImportRowInput) error {
	detail := map[string]any{"row": i}
	if strings.TrimSpace(in.GuestName) == "" {
		return apperrors.NewValidationError("guest_name required", detail)
	}
	if !strings.Contains(in.GuestEmail, "@") {
		return apperrors.NewValidationError("guest_email invalid", detail)
	}
	if strings.TrimSpace(in.RoomNumber) == "" {
		return apperrors.NewValidationError("room_number required", detail)
	}
	if !in.CheckIn.Before(in.CheckOut) {
		return apperrors.NewValidationError("check_in must precede check_out", detail)
	}
	return nil
}

// Claim implements queue.Source over the pending pool.
func (s *ImportService) Claim(ctx context.Context, limit int) ([]domain.ImportRow, error) {
	return s.store.Imports().ClaimPending(ctx, limit, s.lease)
}

// Process handles one claimed row: verify the group has a primary guest,
// resolve the room, create the stay, notify. Row failures are written back
// as terminal ERROR statuses so a later invocation does not pick them up
// again.
func (s *ImportService) Process(ctx context.Context, row domain.ImportRow) error {
	primaries, err := s.store.Imports().CountPrimaryInGroup(ctx, row.GroupID)
	if err != nil {
		return err
	}
	if primaries == 0 {
		// group-level failure: every still-pending sibling is marked too,
		// so the group fails once instead of row by row
		if markErr := s.store.Imports().MarkGroupError(ctx, row.GroupID, "no primary guest in group"); markErr != nil {
			return markErr
		}
		if markErr := s.store.Imports().MarkError(ctx, row.ID, "no primary guest in group"); markErr != nil {
			return markErr
		}
		return fmt.Errorf("group %s has no primary guest", row.GroupID)
	}

	room, err := s.store.Catalog().GetRoomByNumber(ctx, row.HotelID, row.RoomNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if markErr := s.store.Imports().MarkError(ctx, row.ID, "unknown room number "+row.RoomNumber); markErr != nil {
				return markErr
			}
			return fmt.Errorf("row %s: unknown room number %s", row.ID, row.RoomNumber)
		}
		return err
	}

	stay := &domain.Stay{
		HotelID:  row.HotelID,
		RoomID:   room.ID,
		GuestID:  uuid.NewString(),
		CheckIn:  row.CheckIn,
		CheckOut: row.CheckOut,
	}
	err = s.store.WithTx(ctx, func(ds repository.Datastore) error {
		if err := ds.Stays().Create(ctx, stay); err != nil {
			return err
		}
		return ds.Imports().MarkNotified(ctx, row.ID)
	})
	if err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventBookingImported,
			HotelID:   row.HotelID,
			EntityID:  stay.ID,
			Actor:     events.Actor{Type: domain.ActorTypeSystem},
			Timestamp: s.now(),
			Payload: events.BookingImportedPayload{
				ImportRowID: row.ID,
				StayID:      stay.ID,
				GuestEmail:  row.GuestEmail,
			},
		})
	}
	return nil
}

// Runner wires the service into the generic claim runner.
func (s *ImportService) Runner(logger *zap.Logger, metrics *observability.Metrics) *queue.Runner[domain.ImportRow] {
	return queue.NewRunner[domain.ImportRow]("booking_import", s, s.Process,
		func(r domain.ImportRow) string { return r.ID }, logger, metrics)
}
