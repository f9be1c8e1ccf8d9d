package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

func newAssignmentFixture(t *testing.T) (*fixture, *AssignmentService) {
	t.Helper()
	f := newFixture(t)
	svc := NewAssignmentService(f.store, f.svc, nil, time.Minute, nil)
	return f, svc
}

func TestAssignPicksLeastLoadedStaff(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	ctx := context.Background()

	// second agent in the department, already carrying one open ticket
	deptID := f.deptID
	busy := &domain.StaffMember{
		ID: "stf-busy", HotelID: f.hotelID, DepartmentID: &deptID,
		Name: "Max", Email: "max@example.com", Role: domain.StaffRoleAgent,
		Available: true, Active: true,
	}
	f.store.staff[busy.ID] = busy

	loaded := f.createTicket(t)
	_, err := f.svc.Transition(ctx, loaded.ID, ActionAssign, f.staffActor(), TransitionParams{AssigneeID: busy.ID})
	require.NoError(t, err)

	ticket := f.createTicket(t)
	claimed, err := svc.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, ticket.ID, claimed[0].ID)

	require.NoError(t, svc.Process(ctx, claimed[0]))

	view, err := f.svc.GetTicketView(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Ticket.AssigneeID)
	require.Equal(t, f.staffID, *view.Ticket.AssigneeID, "idle agent preferred over loaded one")
	require.Equal(t, domain.TicketStatusNew, view.Ticket.Status, "assignment does not start the clock")
	require.False(t, view.SLA.Running)

	last := view.Events[len(view.Events)-1]
	require.Equal(t, domain.EventTypeAssigned, last.Type)
	require.Equal(t, domain.ActorTypeSystem, last.ActorType)
}

func TestAssignLeavesTicketWhenNobodyAvailable(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	ctx := context.Background()

	f.store.staff[f.staffID].Available = false
	ticket := f.createTicket(t)

	claimed, err := svc.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.NoError(t, svc.Process(ctx, claimed[0]))

	view, err := f.svc.GetTicketView(ctx, ticket.ID)
	require.NoError(t, err)
	require.Nil(t, view.Ticket.AssigneeID)
	require.Equal(t, domain.TicketStatusNew, view.Ticket.Status)
}

func TestClaimSkipsAssignedAndLeasedTickets(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	ctx := context.Background()

	assigned := f.createTicket(t)
	_, err := f.svc.Transition(ctx, assigned.ID, ActionAssign, f.staffActor(), TransitionParams{AssigneeID: f.staffID})
	require.NoError(t, err)

	open := f.createTicket(t)

	claimed, err := svc.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, open.ID, claimed[0].ID)

	// leased: a second claim within the lease window sees nothing
	again, err := svc.Claim(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, again)

	// after the lease expires the unprocessed ticket returns to the pool
	f.clock.Advance(2 * time.Minute)
	again, err = svc.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.Equal(t, open.ID, again[0].ID)
}
