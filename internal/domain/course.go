package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Course struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	InstructorName  string         `db:"instructor_name" json:"instructorName"`
	InstructorImage *string        `db:"instructor_image" json:"instructorImage,omitempty"`
	Category        string         `db:"category" json:"category"`
	Price           float64        `db:"price" json:"price"`
	Rating          float64        `db:"rating" json:"rating"`
	Reviews         int            `db:"reviews" json:"reviews"`
	Discount        float64        `db:"discount" json:"discount"`
	ImageURL        *string        `db:"image_url" json:"image,omitempty"`
	Tags            pq.StringArray `db:"tags" json:"tags,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
}
