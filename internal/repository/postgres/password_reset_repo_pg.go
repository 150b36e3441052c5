package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dreamslms/api/internal/domain"
)

type PasswordResetRepository struct {
	db *sqlx.DB
}

func NewPasswordResetRepo(db *sqlx.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, accountID, tokenID uuid.UUID, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.PasswordReset, error) {
	const query = `
        INSERT INTO password_reset (account_id, token_id, otp_hash, otp_salt, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, account_id, token_id, otp_hash, otp_salt, expires_at, consumed, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, accountID, tokenID, otpHash, otpSalt, expiresAt)
	var reset domain.PasswordReset
	if err := row.StructScan(&reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

// FindActiveByAccount returns the latest unconsumed reset row. Expiry is
// decided by the caller so that an expired row can still be consumed.
func (r *PasswordResetRepository) FindActiveByAccount(ctx context.Context, accountID uuid.UUID) (*domain.PasswordReset, error) {
	const query = `
        SELECT id, account_id, token_id, otp_hash, otp_salt, expires_at, consumed, created_at
        FROM password_reset
        WHERE account_id = $1 AND consumed = FALSE
        ORDER BY created_at DESC
        LIMIT 1
    `
	var reset domain.PasswordReset
	if err := r.db.GetContext(ctx, &reset, query, accountID); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepository) MarkConsumed(ctx context.Context, id int64) error {
	const query = `
        UPDATE password_reset
        SET consumed = TRUE
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *PasswordResetRepository) ConsumeByAccount(ctx context.Context, accountID uuid.UUID) error {
	const query = `
        UPDATE password_reset
        SET consumed = TRUE
        WHERE account_id = $1 AND consumed = FALSE
    `
	_, err := r.db.ExecContext(ctx, query, accountID)
	return err
}
