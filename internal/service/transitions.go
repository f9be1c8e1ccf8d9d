package service

import "github.com/KP-1306/vaiyu-sub006/internal/domain"

// Action enumerates the operations callers can request on a ticket.
type Action string

const (
	ActionAssign  Action = "assign"
	ActionStart   Action = "start"
	ActionPause   Action = "pause"
	ActionResume  Action = "resume"
	ActionResolve Action = "resolve"
	ActionClose   Action = "close"
	ActionCancel  Action = "cancel"
	ActionReopen  Action = "reopen"
)

// ValidAction reports whether a is a known action.
func ValidAction(a Action) bool {
	switch a {
	case ActionAssign, ActionStart, ActionPause, ActionResume,
		ActionResolve, ActionClose, ActionCancel, ActionReopen:
		return true
	}
	return false
}

// transitionTable is the single authority for legal transitions: current
// status x action -> next status. Anything absent is rejected. Assign keeps
// the ticket in NEW; the SLA clock starts on the separate start action so
// waiting-to-be-picked-up time is not counted as active handling.
var transitionTable = map[domain.TicketStatus]map[Action]domain.TicketStatus{
	domain.TicketStatusNew: {
		ActionAssign: domain.TicketStatusNew,
		ActionStart:  domain.TicketStatusInProgress,
		ActionCancel: domain.TicketStatusCancelled,
	},
	domain.TicketStatusInProgress: {
		ActionPause:   domain.TicketStatusBlocked,
		ActionResolve: domain.TicketStatusCompleted,
		ActionClose:   domain.TicketStatusCompleted,
		ActionCancel:  domain.TicketStatusCancelled,
	},
	domain.TicketStatusBlocked: {
		ActionResume:  domain.TicketStatusInProgress,
		ActionResolve: domain.TicketStatusCompleted,
		ActionClose:   domain.TicketStatusCompleted,
		ActionCancel:  domain.TicketStatusCancelled,
	},
	domain.TicketStatusCompleted: {
		ActionReopen: domain.TicketStatusNew,
	},
	domain.TicketStatusCancelled: {},
}

// nextStatus resolves the transition table.
func nextStatus(current domain.TicketStatus, action Action) (domain.TicketStatus, bool) {
	next, ok := transitionTable[current][action]
	return next, ok
}
