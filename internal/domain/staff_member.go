package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAgent      StaffRole = "AGENT"
	StaffRoleSupervisor StaffRole = "SUPERVISOR"
	StaffRoleAdmin      StaffRole = "ADMIN"
)

// StaffMember models a hotel operator who resolves tickets.
type StaffMember struct {
	ID           string
	HotelID      string
	DepartmentID *string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Available    bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
