package domain

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

type Enrollment struct {
	ID         int64            `db:"id" json:"id"`
	AccountID  uuid.UUID        `db:"account_id" json:"account_id"`
	CourseID   uuid.UUID        `db:"course_id" json:"course_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentSummary is the per-student rollup shown on the dashboard.
type EnrollmentSummary struct {
	Enrolled  int `db:"enrolled" json:"enrolled"`
	Active    int `db:"active" json:"active"`
	Completed int `db:"completed" json:"completed"`
}

// EnrollmentActivity is one row of the admin recent-activity feed.
type EnrollmentActivity struct {
	AccountName string    `db:"account_name" json:"user"`
	Role        Role      `db:"role" json:"role"`
	CourseTitle string    `db:"course_title" json:"course"`
	EnrolledAt  time.Time `db:"enrolled_at" json:"date"`
}
