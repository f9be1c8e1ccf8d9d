package domain

import "time"

// SLAPolicy is a per-department target duration. Multiple policies may exist
// per department historically; at most one is active at a time.
type SLAPolicy struct {
	ID            string
	DepartmentID  string
	TargetMinutes int
	IsActive      bool
	CreatedAt     time.Time
}

// Target returns the policy target as a duration.
func (p SLAPolicy) Target() time.Duration {
	return time.Duration(p.TargetMinutes) * time.Minute
}

// SLAState holds the timer inputs for one ticket. Remaining time is never
// stored; it is derived from these four fields at read time. TargetMinutes is
// snapshotted from the policy active at creation so later policy edits do not
// alter this ticket's contract.
type SLAState struct {
	TicketID           string
	PolicyID           string
	TargetMinutes      int
	StartedAt          *time.Time
	PausedAt           *time.Time
	TotalPausedSeconds int64
	Breached           bool
	UpdatedAt          time.Time
}

// Running reports whether the clock is advancing: started and not paused.
func (s SLAState) Running() bool {
	return s.StartedAt != nil && s.PausedAt == nil
}

// ElapsedActive returns the active handling time as of now, excluding all
// paused intervals. While paused the value is frozen at the pause instant.
func (s SLAState) ElapsedActive(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	end := now
	if s.PausedAt != nil {
		end = *s.PausedAt
	}
	elapsed := end.Sub(*s.StartedAt) - time.Duration(s.TotalPausedSeconds)*time.Second
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns target minus elapsed active time; negative once the
// target is exceeded.
func (s SLAState) Remaining(now time.Time) time.Duration {
	return time.Duration(s.TargetMinutes)*time.Minute - s.ElapsedActive(now)
}

// BreachedAt reports whether active handling time has exceeded the target as
// of now. Used live while the ticket is open; the value frozen at resolve
// time is authoritative afterwards.
func (s SLAState) BreachedAt(now time.Time) bool {
	return s.ElapsedActive(now) > time.Duration(s.TargetMinutes)*time.Minute
}
