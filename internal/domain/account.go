package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// EducationEntry is one line of a teacher's education history.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// ExperienceEntry is one line of a teacher's work history.
type ExperienceEntry struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Years   string `json:"years"`
}

type EducationList []EducationEntry

type ExperienceList []ExperienceEntry

func (l EducationList) Value() (driver.Value, error)  { return jsonbValue(l) }
func (l *EducationList) Scan(src interface{}) error   { return jsonbScan(src, l) }
func (l ExperienceList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *ExperienceList) Scan(src interface{}) error  { return jsonbScan(src, l) }

func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	}
	return errors.New("domain: unsupported jsonb source")
}

// Account is the single user entity. Students, teachers and admins share
// the table and are distinguished by the role column; email is unique
// across all roles.
type Account struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	Name         string         `db:"name" json:"name"`
	Role         Role           `db:"role" json:"role"`
	PasswordHash []byte         `db:"password_hash" json:"-"`
	PasswordSalt []byte         `db:"password_salt" json:"-"`
	Phone        *string        `db:"phone" json:"phoneNumber,omitempty"`
	Bio          *string        `db:"bio" json:"bio,omitempty"`
	DOB          *time.Time     `db:"dob" json:"dob,omitempty"`
	Age          *int           `db:"age" json:"age,omitempty"`
	ImageURL     *string        `db:"profile_image_url" json:"profileImage,omitempty"`
	Education    EducationList  `db:"education" json:"education,omitempty"`
	Experience   ExperienceList `db:"experience" json:"experience,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// DashboardURL is where the frontend sends an account after signin.
func (a *Account) DashboardURL() string {
	return DashboardURLForRole(a.Role)
}

func DashboardURLForRole(role Role) string {
	switch role {
	case RoleTeacher:
		return "/instructor/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/student/dashboard"
	}
}
