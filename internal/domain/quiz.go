package domain

import (
	"time"

	"github.com/google/uuid"
)

type QuizAttempt struct {
	ID        int64     `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	QuizTitle string    `db:"quiz_title" json:"title"`
	Correct   int       `db:"correct" json:"correct"`
	Total     int       `db:"total" json:"total"`
	TakenAt   time.Time `db:"taken_at" json:"taken_at"`
}

// Percentage is the attempt score in [0,100].
func (q QuizAttempt) Percentage() int {
	if q.Total <= 0 {
		return 0
	}
	return q.Correct * 100 / q.Total
}
