package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
)

// TokenPurpose tags a token with what it may be used for. A reset token is
// never accepted where a session token is expected, and vice versa.
type TokenPurpose string

const (
	PurposeSession TokenPurpose = "session"
	PurposeReset   TokenPurpose = "reset"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

type Claims struct {
	AccountID uuid.UUID    `json:"sub"`
	Role      domain.Role  `json:"role"`
	Purpose   TokenPurpose `json:"purpose"`
	ResetID   *uuid.UUID   `json:"reset_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewTokenManager(secret string, sessionTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), sessionTTL: sessionTTL, resetTTL: resetTTL}
}

func (m *TokenManager) IssueSession(accountID uuid.UUID, role domain.Role) (string, time.Time, error) {
	return m.issue(accountID, role, PurposeSession, nil, m.sessionTTL)
}

// IssueReset scopes the token to one reset row via resetID so a stale reset
// link cannot authorise a later reset attempt.
func (m *TokenManager) IssueReset(accountID uuid.UUID, role domain.Role, resetID uuid.UUID) (string, time.Time, error) {
	return m.issue(accountID, role, PurposeReset, &resetID, m.resetTTL)
}

func (m *TokenManager) issue(accountID uuid.UUID, role domain.Role, purpose TokenPurpose, resetID *uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := Claims{
		AccountID: accountID,
		Role:      role,
		Purpose:   purpose,
		ResetID:   resetID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) Parse(tokenString string, purpose TokenPurpose) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
