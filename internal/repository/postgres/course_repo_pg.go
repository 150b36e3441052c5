package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dreamslms/api/internal/domain"
)

const courseColumns = `
        id, title, description, instructor_name, instructor_image,
        category, price, rating, reviews, discount, image_url, tags, created_at`

type CourseRepository struct {
	db *sqlx.DB
}

func NewCourseRepo(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) List(ctx context.Context, category string, limit, offset int) ([]domain.Course, error) {
	category = strings.TrimSpace(category)
	if category != "" {
		const query = `SELECT` + courseColumns + `
            FROM course WHERE category = $1
            ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		var courses []domain.Course
		if err := r.db.SelectContext(ctx, &courses, query, category, limit, offset); err != nil {
			return nil, err
		}
		return courses, nil
	}

	const query = `SELECT` + courseColumns + `
        FROM course ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var courses []domain.Course
	if err := r.db.SelectContext(ctx, &courses, query, limit, offset); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	const query = `SELECT` + courseColumns + ` FROM course WHERE id = $1`
	var course domain.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) RecentForAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Course, error) {
	const query = `
        SELECT course.id, course.title, course.description, course.instructor_name,
               course.instructor_image, course.category, course.price, course.rating,
               course.reviews, course.discount, course.image_url, course.tags, course.created_at
        FROM course
        JOIN enrollment ON enrollment.course_id = course.id
        WHERE enrollment.account_id = $1
        ORDER BY enrollment.enrolled_at DESC
        LIMIT $2
    `
	var courses []domain.Course
	if err := r.db.SelectContext(ctx, &courses, query, accountID, limit); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) Counts(ctx context.Context) (int, int, error) {
	const query = `SELECT COUNT(*) AS courses, COUNT(DISTINCT category) AS categories FROM course`
	var counts struct {
		Courses    int `db:"courses"`
		Categories int `db:"categories"`
	}
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return 0, 0, err
	}
	return counts.Courses, counts.Categories, nil
}
