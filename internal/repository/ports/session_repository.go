package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error)
	DeactivateSession(ctx context.Context, token string) error
	DeactivateAccountSessions(ctx context.Context, accountID uuid.UUID) error
	FindActiveSession(ctx context.Context, token string) (*domain.Session, error)
}
