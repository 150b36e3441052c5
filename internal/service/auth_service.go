package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/api/idtoken"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/media"
	"github.com/dreamslms/api/internal/repository/ports"
	"github.com/dreamslms/api/internal/util"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrPasswordTooWeak    = errors.New("password must be at least 8 characters long")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrEmailAlreadyUsed   = errors.New("this email is already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidResetToken  = errors.New("the reset token is invalid or has expired")
	ErrResetOTPInvalid    = errors.New("the OTP is invalid")
	ErrResetOTPExpired    = errors.New("the OTP has expired")
	ErrResetEmailFailed   = errors.New("unable to send the reset email")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
)

// PasswordResetSender delivers the OTP and reset token out of band.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, otp, resetToken string, otpTTL time.Duration) error
}

type AuthService struct {
	accounts ports.AccountRepository
	resets   ports.PasswordResetRepository
	sessions ports.SessionRepository
	storage  ports.ObjectStorage
	mailer   PasswordResetSender
	tokens   *util.TokenManager

	profileBucket string
	imageMaxBytes int64
	otpTTL        time.Duration
	otpLength     int

	now          func() time.Time
	verifyGoogle func(ctx context.Context, idToken string) (email, name string, err error)
}

func NewAuthService(
	accounts ports.AccountRepository,
	resets ports.PasswordResetRepository,
	sessions ports.SessionRepository,
	storage ports.ObjectStorage,
	mailer PasswordResetSender,
	tokens *util.TokenManager,
	googleAudience string,
	profileBucket string,
	imageMaxBytes int64,
	otpTTL time.Duration,
	otpLength int,
) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	if otpLength <= 0 {
		otpLength = 6
	}
	return &AuthService{
		accounts:      accounts,
		resets:        resets,
		sessions:      sessions,
		storage:       storage,
		mailer:        mailer,
		tokens:        tokens,
		profileBucket: profileBucket,
		imageMaxBytes: imageMaxBytes,
		otpTTL:        otpTTL,
		otpLength:     otpLength,
		now:           time.Now,
		verifyGoogle: func(ctx context.Context, tok string) (string, string, error) {
			payload, err := idtoken.Validate(ctx, tok, googleAudience)
			if err != nil {
				return "", "", err
			}
			email, _ := payload.Claims["email"].(string)
			name, _ := payload.Claims["name"].(string)
			return email, name, nil
		},
	}
}

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// Signup registers a new account. It does not sign the account in.
// Email uniqueness is enforced by the database constraint; two concurrent
// signups race at the insert and the loser gets ErrEmailAlreadyUsed.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	role := domain.RoleStudent
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := domain.ParseRole(strings.TrimSpace(in.Role))
		if !ok || parsed == domain.RoleAdmin {
			return nil, fmt.Errorf("%w: only student or teacher roles are allowed", ErrValidation)
		}
		role = parsed
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, ErrPasswordTooWeak
	}
	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	hash, salt, err := util.DerivePassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("derive password: %w", err)
	}

	account, err := s.accounts.Create(ctx, name, email, role, hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

type SigninResult struct {
	Token       string
	ExpiresAt   time.Time
	Role        domain.Role
	RedirectURL string
	Account     *domain.Account
}

// Signin answers with the same error for an unknown email and a wrong
// password so callers cannot probe which addresses are registered.
func (s *AuthService) Signin(ctx context.Context, email, password string) (*SigninResult, error) {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !util.VerifyPassword(password, account.PasswordSalt, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, account)
}

// SigninWithGoogle verifies the Google ID token and signs in, creating a
// student account on first contact.
func (s *AuthService) SigninWithGoogle(ctx context.Context, idToken string) (*SigninResult, error) {
	email, name, err := s.verifyGoogle(ctx, idToken)
	if err != nil || email == "" {
		return nil, ErrInvalidCredentials
	}
	account, err := s.accounts.UpsertGoogleAccount(ctx, normalizeEmail(email), strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("upsert google account: %w", err)
	}
	return s.openSession(ctx, account)
}

func (s *AuthService) openSession(ctx context.Context, account *domain.Account) (*SigninResult, error) {
	token, expiresAt, err := s.tokens.IssueSession(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	if _, err := s.sessions.CreateSession(ctx, account.ID, token, expiresAt); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &SigninResult{
		Token:       token,
		ExpiresAt:   expiresAt,
		Role:        account.Role,
		RedirectURL: account.DashboardURL(),
		Account:     account,
	}, nil
}

// RequestPasswordReset stores the hashed OTP before attempting delivery;
// if the email cannot be sent the fresh reset row is retired immediately
// so no usable OTP is left behind. Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("find account: %w", err)
	}

	if err := s.resets.ConsumeByAccount(ctx, account.ID); err != nil {
		return fmt.Errorf("consume prior resets: %w", err)
	}

	otp, err := util.GenerateNumericOTP(s.otpLength)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	otpHash, otpSalt, err := util.DerivePassword(otp)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	tokenID := uuid.New()
	reset, err := s.resets.Create(ctx, account.ID, tokenID, otpHash, otpSalt, s.now().Add(s.otpTTL))
	if err != nil {
		return fmt.Errorf("create reset: %w", err)
	}

	resetToken, _, err := s.tokens.IssueReset(account.ID, account.Role, tokenID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	if s.mailer == nil {
		_ = s.resets.MarkConsumed(ctx, reset.ID)
		return fmt.Errorf("%w: mailer not configured", ErrResetEmailFailed)
	}
	if err := s.mailer.SendPasswordReset(ctx, account.Email, otp, resetToken, s.otpTTL); err != nil {
		_ = s.resets.MarkConsumed(ctx, reset.ID)
		return fmt.Errorf("%w: %v", ErrResetEmailFailed, err)
	}
	return nil
}

type ConfirmResetInput struct {
	Token           string
	Email           string
	Password        string
	ConfirmPassword string
	OTP             string
}

type ResetResult struct {
	Role        domain.Role
	RedirectURL string
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in ConfirmResetInput) (*ResetResult, error) {
	if in.Token == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" || in.OTP == "" {
		return nil, fmt.Errorf("%w: fill in all required fields, including OTP", ErrValidation)
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, ErrPasswordTooWeak
	}
	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	claims, err := s.tokens.Parse(in.Token, util.PurposeReset)
	if err != nil {
		return nil, ErrInvalidResetToken
	}

	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if claims.AccountID != account.ID {
		return nil, ErrInvalidResetToken
	}

	reset, err := s.resets.FindActiveByAccount(ctx, account.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetOTPInvalid
		}
		return nil, fmt.Errorf("find reset: %w", err)
	}
	if claims.ResetID == nil || *claims.ResetID != reset.TokenID {
		return nil, ErrInvalidResetToken
	}
	if !s.now().Before(reset.ExpiresAt) {
		_ = s.resets.MarkConsumed(ctx, reset.ID)
		return nil, ErrResetOTPExpired
	}
	if !util.VerifyPassword(in.OTP, reset.OTPSalt, reset.OTPHash) {
		return nil, ErrResetOTPInvalid
	}

	hash, salt, err := util.DerivePassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("derive password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, salt); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	if err := s.resets.MarkConsumed(ctx, reset.ID); err != nil {
		return nil, fmt.Errorf("mark reset consumed: %w", err)
	}
	// Old sessions die with the old password.
	if err := s.sessions.DeactivateAccountSessions(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("deactivate sessions: %w", err)
	}

	return &ResetResult{Role: account.Role, RedirectURL: account.DashboardURL()}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("find account: %w", err)
	}
	if err := util.ValidatePassword(next); err != nil {
		return ErrPasswordTooWeak
	}
	if len(account.PasswordHash) > 0 && !util.VerifyPassword(current, account.PasswordSalt, account.PasswordHash) {
		return ErrPasswordMismatch
	}

	hash, salt, err := util.DerivePassword(next)
	if err != nil {
		return fmt.Errorf("derive password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash, salt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its account. The token must be a
// session token, still signed, unexpired and backed by an active session
// row.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := s.tokens.Parse(token, util.PurposeSession)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if _, err := s.sessions.FindActiveSession(ctx, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeactivateSession(ctx, token)
}

func (s *AuthService) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

type ProfileImage struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type ProfileUpdateInput struct {
	Name       *string
	Phone      *string
	Bio        *string
	DOB        *string
	Age        *int
	Education  domain.EducationList
	Experience domain.ExperienceList
	ClearImage bool
}

// UpdateProfile mutates profile fields only. Role, password and reset
// state cannot be reached through this path regardless of the payload.
func (s *AuthService) UpdateProfile(ctx context.Context, accountID uuid.UUID, in ProfileUpdateInput, image *ProfileImage) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if in.DOB != nil && *in.DOB != "" {
		if _, err := time.Parse("2006-01-02", *in.DOB); err != nil {
			return nil, fmt.Errorf("%w: dob must be YYYY-MM-DD", ErrValidation)
		}
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > 150) {
		return nil, fmt.Errorf("%w: age out of range", ErrValidation)
	}

	update := ports.ProfileUpdate{
		Name:       trimmedOrNil(in.Name),
		Phone:      trimmedOrNil(in.Phone),
		Bio:        in.Bio,
		DOB:        in.DOB,
		Age:        in.Age,
		ClearImage: in.ClearImage,
	}
	// Credential histories apply to teachers only.
	if account.Role == domain.RoleTeacher {
		update.Education = in.Education
		update.Experience = in.Experience
	}

	if image != nil {
		img, err := media.ValidateImage(media.Upload{
			Reader:      image.Reader,
			Size:        image.Size,
			FileName:    image.FileName,
			ContentType: image.ContentType,
		}, s.imageMaxBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		objectName := fmt.Sprintf("profiles/%s/%s%s", accountID, uuid.NewString(), extensionFor(img.ContentType, image.FileName))
		url, err := s.storage.Upload(ctx, s.profileBucket, objectName, img.ContentType, bytes.NewReader(img.Bytes), int64(len(img.Bytes)))
		if err != nil {
			return nil, fmt.Errorf("upload profile image: %w", err)
		}
		update.ImageURL = &url
		update.ClearImage = false
	}

	updated, err := s.accounts.UpdateProfile(ctx, accountID, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

func (s *AuthService) ListAccounts(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accounts.List(ctx, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// AdminUpdateAccount lets an admin edit a student's profile. Teacher and
// admin records are not editable through this path.
func (s *AuthService) AdminUpdateAccount(ctx context.Context, id uuid.UUID, in ProfileUpdateInput) (*domain.Account, error) {
	target, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if target.Role != domain.RoleStudent {
		return nil, fmt.Errorf("%w: only student accounts can be updated", ErrForbidden)
	}
	return s.UpdateProfile(ctx, id, in, nil)
}

// DeleteAccount allows self-deletion and admin deletion of anyone.
func (s *AuthService) DeleteAccount(ctx context.Context, actor *domain.Account, id uuid.UUID) error {
	if actor == nil {
		return ErrForbidden
	}
	if actor.ID != id && actor.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// EnsureAdmin seeds the admin account at startup. It is a no-op when the
// admin credentials are unset or the account already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find admin: %w", err)
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return fmt.Errorf("derive admin password: %w", err)
	}
	if _, err := s.accounts.Create(ctx, name, email, domain.RoleAdmin, hash, salt); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func extensionFor(contentType, fileName string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	return ".bin"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
