package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dreamslms/api/internal/domain"
)

type QuizRepository struct {
	db *sqlx.DB
}

func NewQuizRepo(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) LatestForAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.QuizAttempt, error) {
	const query = `
        SELECT id, account_id, quiz_title, correct, total, taken_at
        FROM quiz_attempt
        WHERE account_id = $1
        ORDER BY taken_at DESC
        LIMIT $2
    `
	var attempts []domain.QuizAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, accountID, limit); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *QuizRepository) AnsweredCount(ctx context.Context, accountID uuid.UUID) (int, int, error) {
	const query = `
        SELECT (SELECT COUNT(DISTINCT quiz_title) FROM quiz_attempt WHERE account_id = $1) AS answered,
               (SELECT COUNT(DISTINCT quiz_title) FROM quiz_attempt) AS available
    `
	var counts struct {
		Answered  int `db:"answered"`
		Available int `db:"available"`
	}
	if err := r.db.GetContext(ctx, &counts, query, accountID); err != nil {
		return 0, 0, err
	}
	return counts.Answered, counts.Available, nil
}
