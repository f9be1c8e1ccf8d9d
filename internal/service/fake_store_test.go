package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
)

// memStore is an in-memory Datastore for service tests. Transactions are a
// no-op pass-through; the tests exercise service semantics, not commit
// behavior.
type memStore struct {
	mu sync.Mutex

	seq int

	tickets       map[string]*domain.Ticket
	ticketClaims  map[string]time.Time
	events        []domain.TicketEvent
	policies      []domain.SLAPolicy
	states        map[string]*domain.SLAState
	staff         map[string]*domain.StaffMember
	stays         map[string]*domain.Stay
	importRows    map[string]*domain.ImportRow
	importClaims  map[string]time.Time
	hotels        map[string]*domain.Hotel
	departments   map[string]*domain.Department
	hotelServices map[string]*domain.ServiceItem
	rooms         map[string]*domain.Room
	zones         map[string]*domain.Zone
	audits        []domain.AuditEntry

	now func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	if now == nil {
		now = time.Now
	}
	return &memStore{
		tickets:       map[string]*domain.Ticket{},
		ticketClaims:  map[string]time.Time{},
		states:        map[string]*domain.SLAState{},
		staff:         map[string]*domain.StaffMember{},
		stays:         map[string]*domain.Stay{},
		importRows:    map[string]*domain.ImportRow{},
		importClaims:  map[string]time.Time{},
		hotels:        map[string]*domain.Hotel{},
		departments:   map[string]*domain.Department{},
		hotelServices: map[string]*domain.ServiceItem{},
		rooms:         map[string]*domain.Room{},
		zones:         map[string]*domain.Zone{},
		now:           now,
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

func (s *memStore) WithTx(_ context.Context, fn func(ds repository.Datastore) error) error {
	return fn(s)
}

func (s *memStore) Tickets() repository.TicketRepository     { return &memTickets{s} }
func (s *memStore) Events() repository.TicketEventRepository { return &memEvents{s} }
func (s *memStore) SLA() repository.SLARepository            { return &memSLA{s} }
func (s *memStore) Staff() repository.StaffRepository        { return &memStaff{s} }
func (s *memStore) Stays() repository.StayRepository         { return &memStays{s} }
func (s *memStore) Imports() repository.ImportRepository     { return &memImports{s} }
func (s *memStore) Catalog() repository.CatalogRepository    { return &memCatalog{s} }
func (s *memStore) Audit() repository.AuditRepository        { return &memAudit{s} }

type memTickets struct{ s *memStore }

func (r *memTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = r.s.nextID("tkt")
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	cp := *ticket
	r.s.tickets[ticket.ID] = &cp
	return nil
}

func (r *memTickets) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = r.s.now()
	cp := *ticket
	r.s.tickets[ticket.ID] = &cp
	return nil
}

func (r *memTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (r *memTickets) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *memTickets) ClaimUnassigned(_ context.Context, limit int, lease time.Duration) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()

	var eligible []*domain.Ticket
	for _, t := range r.s.tickets {
		if t.Status != domain.TicketStatusNew || t.AssigneeID != nil {
			continue
		}
		if claimed, ok := r.s.ticketClaims[t.ID]; ok && now.Sub(claimed) < lease {
			continue
		}
		eligible = append(eligible, t)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].CreatedAt.Before(eligible[j].CreatedAt) })
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	out := make([]domain.Ticket, 0, len(eligible))
	for _, t := range eligible {
		r.s.ticketClaims[t.ID] = now
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTickets) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if filter.HotelID != nil && t.HotelID != *filter.HotelID {
			continue
		}
		if filter.StayID != nil && (t.StayID == nil || *t.StayID != *filter.StayID) {
			continue
		}
		if filter.DepartmentID != nil && t.DepartmentID != *filter.DepartmentID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func containsStatus(list []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

type memEvents struct{ s *memStore }

func (r *memEvents) Append(_ context.Context, event *domain.TicketEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = r.s.nextID("evt")
	event.CreatedAt = r.s.now()
	for i := range event.Media {
		event.Media[i].ID = r.s.nextID("med")
		event.Media[i].TicketEventID = event.ID
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r *memEvents) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketEvent
	for _, e := range r.s.events {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEvents) CountReopens(_ context.Context, ticketID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, e := range r.s.events {
		if e.TicketID == ticketID &&
			e.Type == domain.EventTypeStatusChange &&
			e.OldStatus != nil && *e.OldStatus == domain.TicketStatusCompleted &&
			e.NewStatus != nil && *e.NewStatus == domain.TicketStatusNew {
			count++
		}
	}
	return count, nil
}

type memSLA struct{ s *memStore }

func (r *memSLA) GetActivePolicy(_ context.Context, departmentID string) (*domain.SLAPolicy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.policies {
		p := r.s.policies[i]
		if p.DepartmentID == departmentID && p.IsActive {
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memSLA) GetPolicy(_ context.Context, id string) (*domain.SLAPolicy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.policies {
		if r.s.policies[i].ID == id {
			p := r.s.policies[i]
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memSLA) CreatePolicy(_ context.Context, policy *domain.SLAPolicy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	policy.ID = r.s.nextID("pol")
	policy.CreatedAt = r.s.now()
	r.s.policies = append(r.s.policies, *policy)
	return nil
}

func (r *memSLA) CreateState(_ context.Context, state *domain.SLAState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	state.UpdatedAt = r.s.now()
	cp := *state
	r.s.states[state.TicketID] = &cp
	return nil
}

func (r *memSLA) GetState(_ context.Context, ticketID string) (*domain.SLAState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	state, ok := r.s.states[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *state
	return &cp, nil
}

func (r *memSLA) GetStateForUpdate(ctx context.Context, ticketID string) (*domain.SLAState, error) {
	return r.GetState(ctx, ticketID)
}

func (r *memSLA) UpdateState(_ context.Context, state *domain.SLAState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.states[state.TicketID]; !ok {
		return pgx.ErrNoRows
	}
	state.UpdatedAt = r.s.now()
	cp := *state
	r.s.states[state.TicketID] = &cp
	return nil
}

type memStaff struct{ s *memStore }

func (r *memStaff) Create(_ context.Context, staff *domain.StaffMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff.ID = r.s.nextID("stf")
	staff.CreatedAt = r.s.now()
	cp := *staff
	r.s.staff[staff.ID] = &cp
	return nil
}

func (r *memStaff) Update(_ context.Context, staff *domain.StaffMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *staff
	r.s.staff[staff.ID] = &cp
	return nil
}

func (r *memStaff) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff, ok := r.s.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *staff
	return &cp, nil
}

func (r *memStaff) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, staff := range r.s.staff {
		if strings.EqualFold(staff.Email, email) {
			cp := *staff
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memStaff) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.StaffMember
	for _, staff := range r.s.staff {
		if filter.HotelID != nil && staff.HotelID != *filter.HotelID {
			continue
		}
		if filter.DepartmentID != nil && (staff.DepartmentID == nil || *staff.DepartmentID != *filter.DepartmentID) {
			continue
		}
		out = append(out, *staff)
	}
	return out, nil
}

func (r *memStaff) ListAvailableByDepartment(_ context.Context, departmentID string) ([]repository.StaffWithLoad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.StaffWithLoad
	for _, staff := range r.s.staff {
		if staff.DepartmentID == nil || *staff.DepartmentID != departmentID || !staff.Active || !staff.Available {
			continue
		}
		load := 0
		for _, t := range r.s.tickets {
			if t.AssigneeID != nil && *t.AssigneeID == staff.ID &&
				(t.Status == domain.TicketStatusNew || t.Status == domain.TicketStatusInProgress || t.Status == domain.TicketStatusBlocked) {
				load++
			}
		}
		out = append(out, repository.StaffWithLoad{Staff: *staff, OpenTickets: load})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenTickets != out[j].OpenTickets {
			return out[i].OpenTickets < out[j].OpenTickets
		}
		return out[i].Staff.ID < out[j].Staff.ID
	})
	return out, nil
}

type memStays struct{ s *memStore }

func (r *memStays) Create(_ context.Context, stay *domain.Stay) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stay.ID = r.s.nextID("sty")
	stay.CreatedAt = r.s.now()
	cp := *stay
	r.s.stays[stay.ID] = &cp
	return nil
}

func (r *memStays) GetByID(_ context.Context, id string) (*domain.Stay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stay, ok := r.s.stays[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *stay
	return &cp, nil
}

type memImports struct{ s *memStore }

func (r *memImports) InsertRows(_ context.Context, rows []domain.ImportRow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range rows {
		rows[i].ID = r.s.nextID("imp")
		rows[i].Status = domain.ImportRowStatusPending
		rows[i].CreatedAt = r.s.now()
		cp := rows[i]
		r.s.importRows[rows[i].ID] = &cp
	}
	return nil
}

func (r *memImports) ClaimPending(_ context.Context, limit int, lease time.Duration) ([]domain.ImportRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()

	var eligible []*domain.ImportRow
	for _, row := range r.s.importRows {
		if row.Status != domain.ImportRowStatusPending {
			continue
		}
		if claimed, ok := r.s.importClaims[row.ID]; ok && now.Sub(claimed) < lease {
			continue
		}
		eligible = append(eligible, row)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID < eligible[j].ID })
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	out := make([]domain.ImportRow, 0, len(eligible))
	for _, row := range eligible {
		r.s.importClaims[row.ID] = now
		out = append(out, *row)
	}
	return out, nil
}

func (r *memImports) MarkNotified(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.importRows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := r.s.now()
	row.Status = domain.ImportRowStatusNotified
	row.ErrorReason = nil
	row.ProcessedAt = &now
	return nil
}

func (r *memImports) MarkError(_ context.Context, id, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.importRows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := r.s.now()
	row.Status = domain.ImportRowStatusError
	row.ErrorReason = &reason
	row.ProcessedAt = &now
	return nil
}

func (r *memImports) MarkGroupError(_ context.Context, groupID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for _, row := range r.s.importRows {
		if row.GroupID == groupID && row.Status == domain.ImportRowStatusPending {
			row.Status = domain.ImportRowStatusError
			row.ErrorReason = &reason
			row.ProcessedAt = &now
		}
	}
	return nil
}

func (r *memImports) CountPrimaryInGroup(_ context.Context, groupID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, row := range r.s.importRows {
		if row.GroupID == groupID && row.IsPrimary {
			count++
		}
	}
	return count, nil
}

type memCatalog struct{ s *memStore }

func (r *memCatalog) GetHotel(_ context.Context, id string) (*domain.Hotel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	hotel, ok := r.s.hotels[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *hotel
	return &cp, nil
}

func (r *memCatalog) GetDepartment(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	dept, ok := r.s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *dept
	return &cp, nil
}

func (r *memCatalog) GetService(_ context.Context, id string) (*domain.ServiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.hotelServices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *svc
	return &cp, nil
}

func (r *memCatalog) GetRoom(_ context.Context, id string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *room
	return &cp, nil
}

func (r *memCatalog) GetRoomByNumber(_ context.Context, hotelID, number string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, room := range r.s.rooms {
		if room.HotelID == hotelID && room.Number == number {
			cp := *room
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memCatalog) GetZone(_ context.Context, id string) (*domain.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	zone, ok := r.s.zones[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *zone
	return &cp, nil
}

type memAudit struct{ s *memStore }

func (r *memAudit) Insert(_ context.Context, entry *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.nextID("aud")
	entry.CreatedAt = r.s.now()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}
