package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dreamslms/api/internal/domain"
)

type EnrollmentRepository struct {
	db *sqlx.DB
}

func NewEnrollmentRepo(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) SummaryForAccount(ctx context.Context, accountID uuid.UUID) (domain.EnrollmentSummary, error) {
	const query = `
        SELECT COUNT(*) AS enrolled,
               COUNT(*) FILTER (WHERE status = 'active') AS active,
               COUNT(*) FILTER (WHERE status = 'completed') AS completed
        FROM enrollment
        WHERE account_id = $1
    `
	var summary domain.EnrollmentSummary
	if err := r.db.GetContext(ctx, &summary, query, accountID); err != nil {
		return domain.EnrollmentSummary{}, err
	}
	return summary, nil
}

func (r *EnrollmentRepository) RecentActivity(ctx context.Context, limit int) ([]domain.EnrollmentActivity, error) {
	const query = `
        SELECT account.name AS account_name,
               account.role AS role,
               course.title AS course_title,
               enrollment.enrolled_at AS enrolled_at
        FROM enrollment
        JOIN account ON account.id = enrollment.account_id
        JOIN course ON course.id = enrollment.course_id
        ORDER BY enrollment.enrolled_at DESC
        LIMIT $1
    `
	var activity []domain.EnrollmentActivity
	if err := r.db.SelectContext(ctx, &activity, query, limit); err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *EnrollmentRepository) TotalEarnings(ctx context.Context) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(course.price * (1 - course.discount / 100.0)), 0) AS earnings
        FROM enrollment
        JOIN course ON course.id = enrollment.course_id
    `
	var earnings float64
	if err := r.db.GetContext(ctx, &earnings, query); err != nil {
		return 0, err
	}
	return earnings, nil
}
