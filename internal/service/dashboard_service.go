package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/repository/ports"
)

// DashboardService aggregates read models for the student and admin
// dashboards. It has no write path.
type DashboardService struct {
	accounts    ports.AccountRepository
	courses     ports.CourseRepository
	enrollments ports.EnrollmentRepository
	quizzes     ports.QuizRepository
}

func NewDashboardService(
	accounts ports.AccountRepository,
	courses ports.CourseRepository,
	enrollments ports.EnrollmentRepository,
	quizzes ports.QuizRepository,
) *DashboardService {
	return &DashboardService{
		accounts:    accounts,
		courses:     courses,
		enrollments: enrollments,
		quizzes:     quizzes,
	}
}

type StudentDashboard struct {
	EnrolledCourses  int                  `json:"enrolledCourses"`
	ActiveCourses    int                  `json:"activeCourses"`
	CompletedCourses int                  `json:"completedCourses"`
	QuizzesAnswered  int                  `json:"quizzesAnswered"`
	QuizzesAvailable int                  `json:"quizzesAvailable"`
	RecentCourses    []domain.Course      `json:"recentlyEnrolled"`
	LatestQuizzes    []domain.QuizAttempt `json:"latestQuizzes"`
}

func (s *DashboardService) StudentDashboard(ctx context.Context, accountID uuid.UUID) (*StudentDashboard, error) {
	summary, err := s.enrollments.SummaryForAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("enrollment summary: %w", err)
	}
	answered, available, err := s.quizzes.AnsweredCount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("quiz counts: %w", err)
	}
	recent, err := s.courses.RecentForAccount(ctx, accountID, 4)
	if err != nil {
		return nil, fmt.Errorf("recent courses: %w", err)
	}
	latest, err := s.quizzes.LatestForAccount(ctx, accountID, 5)
	if err != nil {
		return nil, fmt.Errorf("latest quizzes: %w", err)
	}
	if recent == nil {
		recent = []domain.Course{}
	}
	if latest == nil {
		latest = []domain.QuizAttempt{}
	}
	return &StudentDashboard{
		EnrolledCourses:  summary.Enrolled,
		ActiveCourses:    summary.Active,
		CompletedCourses: summary.Completed,
		QuizzesAnswered:  answered,
		QuizzesAvailable: available,
		RecentCourses:    recent,
		LatestQuizzes:    latest,
	}, nil
}

type AdminDashboard struct {
	Students       int                         `json:"totalStudents"`
	Teachers       int                         `json:"totalTeachers"`
	Courses        int                         `json:"totalCourses"`
	Categories     int                         `json:"totalCategories"`
	TotalEarnings  float64                     `json:"totalEarnings"`
	RecentActivity []domain.EnrollmentActivity `json:"recentActivity"`
}

func (s *DashboardService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	roleCounts, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	courses, categories, err := s.courses.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}
	earnings, err := s.enrollments.TotalEarnings(ctx)
	if err != nil {
		return nil, fmt.Errorf("total earnings: %w", err)
	}
	activity, err := s.enrollments.RecentActivity(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	if activity == nil {
		activity = []domain.EnrollmentActivity{}
	}
	return &AdminDashboard{
		Students:       roleCounts[domain.RoleStudent],
		Teachers:       roleCounts[domain.RoleTeacher],
		Courses:        courses,
		Categories:     categories,
		TotalEarnings:  earnings,
		RecentActivity: activity,
	}, nil
}
