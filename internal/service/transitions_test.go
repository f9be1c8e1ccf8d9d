package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		current domain.TicketStatus
		action  Action
		want    domain.TicketStatus
		ok      bool
	}{
		{domain.TicketStatusNew, ActionAssign, domain.TicketStatusNew, true},
		{domain.TicketStatusNew, ActionStart, domain.TicketStatusInProgress, true},
		{domain.TicketStatusNew, ActionCancel, domain.TicketStatusCancelled, true},
		{domain.TicketStatusNew, ActionResolve, "", false},
		{domain.TicketStatusNew, ActionPause, "", false},
		{domain.TicketStatusNew, ActionReopen, "", false},

		{domain.TicketStatusInProgress, ActionPause, domain.TicketStatusBlocked, true},
		{domain.TicketStatusInProgress, ActionResolve, domain.TicketStatusCompleted, true},
		{domain.TicketStatusInProgress, ActionClose, domain.TicketStatusCompleted, true},
		{domain.TicketStatusInProgress, ActionCancel, domain.TicketStatusCancelled, true},
		{domain.TicketStatusInProgress, ActionStart, "", false},
		{domain.TicketStatusInProgress, ActionResume, "", false},

		{domain.TicketStatusBlocked, ActionResume, domain.TicketStatusInProgress, true},
		{domain.TicketStatusBlocked, ActionResolve, domain.TicketStatusCompleted, true},
		{domain.TicketStatusBlocked, ActionCancel, domain.TicketStatusCancelled, true},
		{domain.TicketStatusBlocked, ActionPause, "", false},

		{domain.TicketStatusCompleted, ActionReopen, domain.TicketStatusNew, true},
		{domain.TicketStatusCompleted, ActionStart, "", false},
		{domain.TicketStatusCompleted, ActionCancel, "", false},

		{domain.TicketStatusCancelled, ActionReopen, "", false},
		{domain.TicketStatusCancelled, ActionStart, "", false},
		{domain.TicketStatusCancelled, ActionAssign, "", false},
	}

	for _, tc := range cases {
		next, ok := nextStatus(tc.current, tc.action)
		require.Equal(t, tc.ok, ok, "%s + %s", tc.current, tc.action)
		if tc.ok {
			assert.Equal(t, tc.want, next, "%s + %s", tc.current, tc.action)
		}
	}
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionStart))
	assert.True(t, ValidAction(ActionReopen))
	assert.False(t, ValidAction(Action("escalate")))
	assert.False(t, ValidAction(Action("")))
}
