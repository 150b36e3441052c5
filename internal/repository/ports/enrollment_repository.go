package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
)

type EnrollmentRepository interface {
	SummaryForAccount(ctx context.Context, accountID uuid.UUID) (domain.EnrollmentSummary, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.EnrollmentActivity, error)
	TotalEarnings(ctx context.Context) (float64, error)
}
