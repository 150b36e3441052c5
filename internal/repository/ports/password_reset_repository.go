package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, accountID, tokenID uuid.UUID, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.PasswordReset, error)
	// FindActiveByAccount returns the latest unconsumed reset for the
	// account, expired or not; callers enforce expiry.
	FindActiveByAccount(ctx context.Context, accountID uuid.UUID) (*domain.PasswordReset, error)
	MarkConsumed(ctx context.Context, id int64) error
	ConsumeByAccount(ctx context.Context, accountID uuid.UUID) error
}
