package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the JWT payload. Guest tokens are stay-scoped: they carry
// the stay that authorizes them and nothing else. Staff and front-desk
// tokens reference a staff_members row.
type Claims struct {
	SubjectID string            `json:"sub"`
	Subject   domain.ActorType  `json:"subject"`
	Role      *domain.StaffRole `json:"role,omitempty"`
	StayID    *string           `json:"stay_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateStaffToken signs a token for a staff or front-desk operator.
func (tm *TokenManager) GenerateStaffToken(staffID string, subject domain.ActorType, role domain.StaffRole) (string, time.Time, error) {
	return tm.sign(&Claims{SubjectID: staffID, Subject: subject, Role: &role})
}

// GenerateGuestToken signs a stay-scoped guest token. Expiry still applies;
// the stay itself is re-checked on operations that need it.
func (tm *TokenManager) GenerateGuestToken(guestID, stayID string) (string, time.Time, error) {
	return tm.sign(&Claims{SubjectID: guestID, Subject: domain.ActorTypeGuest, StayID: &stayID})
}

func (tm *TokenManager) sign(claims *Claims) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.SubjectID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
