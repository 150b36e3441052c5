package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
)

type QuizRepository interface {
	LatestForAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.QuizAttempt, error)
	AnsweredCount(ctx context.Context, accountID uuid.UUID) (answered, available int, err error)
}
