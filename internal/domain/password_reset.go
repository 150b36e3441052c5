package domain

import (
	"time"

	"github.com/google/uuid"
)

// PasswordReset records one reset attempt. The OTP is stored hashed, the
// TokenID ties the row to the reset JWT mailed to the account. The OTP and
// its expiry live in the same row and are retired together by flipping
// Consumed.
type PasswordReset struct {
	ID        int64     `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	TokenID   uuid.UUID `db:"token_id" json:"-"`
	OTPHash   []byte    `db:"otp_hash" json:"-"`
	OTPSalt   []byte    `db:"otp_salt" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Consumed  bool      `db:"consumed" json:"consumed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
