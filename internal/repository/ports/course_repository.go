package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
)

type CourseRepository interface {
	List(ctx context.Context, category string, limit, offset int) ([]domain.Course, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	RecentForAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Course, error)
	Counts(ctx context.Context) (courses, categories int, err error)
}
