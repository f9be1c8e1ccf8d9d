package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
	apperrors "github.com/KP-1306/vaiyu-sub006/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Guests carry their stay
// scope; staff and front-desk principals carry the loaded staff row.
type Principal struct {
	Type    domain.ActorType
	GuestID *string
	StayID  *string
	Staff   *domain.StaffMember
}

// ActorID returns the identifier services record as the acting party.
func (p *Principal) ActorID() *string {
	if p.Staff != nil {
		return &p.Staff.ID
	}
	return p.GuestID
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	staff  repository.StaffRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, staff repository.StaffRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, staff: staff}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{Type: claims.Subject}

	switch claims.Subject {
	case domain.ActorTypeGuest:
		if claims.StayID == nil {
			return apperrors.NewUnauthorized("guest token missing stay scope")
		}
		guestID := claims.SubjectID
		principal.GuestID = &guestID
		principal.StayID = claims.StayID
	case domain.ActorTypeStaff, domain.ActorTypeFrontDesk:
		staff, err := m.staff.GetByID(c.Context(), claims.SubjectID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewUnauthorized("staff not found")
			}
			return apperrors.MapError(err)
		}
		if !staff.Active {
			return apperrors.NewUnauthorized("staff account disabled")
		}
		principal.Staff = staff
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
