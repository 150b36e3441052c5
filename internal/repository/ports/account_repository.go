package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/dreamslms/api/internal/domain"
)

// ProfileUpdate carries the mutable profile fields. Nil means "leave as
// is". Password, role and reset state are deliberately not expressible
// here.
type ProfileUpdate struct {
	Name       *string
	Phone      *string
	Bio        *string
	DOB        *string
	Age        *int
	ImageURL   *string
	ClearImage bool
	Education  domain.EducationList
	Experience domain.ExperienceList
}

type AccountRepository interface {
	Create(ctx context.Context, name, email string, role domain.Role, passwordHash, passwordSalt []byte) (*domain.Account, error)
	UpsertGoogleAccount(ctx context.Context, email, name string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	List(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.Account, error)
	CountByRole(ctx context.Context) (map[domain.Role]int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
