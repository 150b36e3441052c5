package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/repository/ports"
)

const accountColumns = `
        id, email, name, role, password_hash, password_salt,
        phone, bio, dob, age, profile_image_url, education, experience,
        created_at, updated_at`

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, name, email string, role domain.Role, passwordHash, passwordSalt []byte) (*domain.Account, error) {
	const query = `
        INSERT INTO account (name, email, role, password_hash, password_salt)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING` + accountColumns

	row := r.db.QueryRowxContext(ctx, query, name, email, role, passwordHash, passwordSalt)
	var account domain.Account
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpsertGoogleAccount(ctx context.Context, email, name string) (*domain.Account, error) {
	const query = `
        INSERT INTO account (name, email, role)
        VALUES ($1, $2, 'student')
        ON CONFLICT (email) DO UPDATE
        SET name = COALESCE(NULLIF(account.name, ''), EXCLUDED.name),
            updated_at = NOW()
        RETURNING` + accountColumns

	row := r.db.QueryRowxContext(ctx, query, name, email)
	var account domain.Account
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `SELECT` + accountColumns + ` FROM account WHERE email = $1`
	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const query = `SELECT` + accountColumns + ` FROM account WHERE id = $1`
	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateProfile touches profile columns only; password, role and reset
// state are out of reach of this statement by construction.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ports.ProfileUpdate) (*domain.Account, error) {
	const query = `
        UPDATE account
        SET name = COALESCE($2, name),
            phone = COALESCE($3, phone),
            bio = COALESCE($4, bio),
            dob = COALESCE($5::date, dob),
            age = COALESCE($6, age),
            profile_image_url = CASE WHEN $8 THEN NULL ELSE COALESCE($7, profile_image_url) END,
            education = COALESCE($9, education),
            experience = COALESCE($10, experience),
            updated_at = NOW()
        WHERE id = $1
        RETURNING` + accountColumns

	var education interface{}
	if update.Education != nil {
		education = update.Education
	}
	var experience interface{}
	if update.Experience != nil {
		experience = update.Experience
	}

	row := r.db.QueryRowxContext(ctx, query, id,
		update.Name, update.Phone, update.Bio, update.DOB, update.Age,
		update.ImageURL, update.ClearImage, education, experience)
	var account domain.Account
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE account
        SET password_hash = $2,
            password_salt = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

func (r *AccountRepository) List(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.Account, error) {
	if role != nil {
		const query = `SELECT` + accountColumns + `
            FROM account WHERE role = $1
            ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		var accounts []domain.Account
		if err := r.db.SelectContext(ctx, &accounts, query, *role, limit, offset); err != nil {
			return nil, err
		}
		return accounts, nil
	}

	const query = `SELECT` + accountColumns + `
        FROM account ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var accounts []domain.Account
	if err := r.db.SelectContext(ctx, &accounts, query, limit, offset); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	const query = `SELECT role, COUNT(*) AS count FROM account GROUP BY role`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Role]int)
	for rows.Next() {
		var entry struct {
			Role  domain.Role `db:"role"`
			Count int         `db:"count"`
		}
		if err := rows.StructScan(&entry); err != nil {
			return nil, err
		}
		counts[entry.Role] = entry.Count
	}
	return counts, rows.Err()
}

func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM account WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
