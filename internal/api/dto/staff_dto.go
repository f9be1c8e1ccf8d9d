package dto

import (
	"time"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// StaffLoginRequest authenticates an operator.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StaffSummary is the operator projection.
type StaffSummary struct {
	ID           string           `json:"id"`
	HotelID      string           `json:"hotel_id"`
	DepartmentID *string          `json:"department_id,omitempty"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Role         domain.StaffRole `json:"role"`
	Available    bool             `json:"available"`
	Active       bool             `json:"active"`
}

// AvailabilityRequest toggles the caller's assignment eligibility.
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// GuestTokenResponse is a stay-scoped token minted at check-in.
type GuestTokenResponse struct {
	StayID    string    `json:"stay_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
