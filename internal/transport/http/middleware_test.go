package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/repository/ports"
	"github.com/dreamslms/api/internal/service"
	"github.com/dreamslms/api/internal/util"
)

// memAccountRepo serves accounts from memory, keyed by id and email.
type memAccountRepo struct {
	accounts map[uuid.UUID]*domain.Account
}

func newMemAccountRepo(accounts ...*domain.Account) *memAccountRepo {
	repo := &memAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (r *memAccountRepo) Create(ctx context.Context, name, email string, role domain.Role, passwordHash, passwordSalt []byte) (*domain.Account, error) {
	account := &domain.Account{ID: uuid.New(), Name: name, Email: email, Role: role, PasswordHash: passwordHash, PasswordSalt: passwordSalt}
	r.accounts[account.ID] = account
	return account, nil
}

func (r *memAccountRepo) UpsertGoogleAccount(ctx context.Context, email, name string) (*domain.Account, error) {
	return r.Create(ctx, name, email, domain.RoleStudent, nil, nil)
}

func (r *memAccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if account, ok := r.accounts[id]; ok {
		return account, nil
	}
	return nil, sql.ErrNoRows
}

func (r *memAccountRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update ports.ProfileUpdate) (*domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Phone != nil {
		account.Phone = update.Phone
	}
	return account, nil
}

func (r *memAccountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	account, ok := r.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	account.PasswordHash = passwordHash
	account.PasswordSalt = passwordSalt
	return nil
}

func (r *memAccountRepo) List(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.Account, error) {
	var out []domain.Account
	for _, account := range r.accounts {
		if role == nil || account.Role == *role {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (r *memAccountRepo) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	counts := make(map[domain.Role]int)
	for _, account := range r.accounts {
		counts[account.Role]++
	}
	return counts, nil
}

func (r *memAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.accounts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.accounts, id)
	return nil
}

// memSessionRepo tracks active session tokens in memory.
type memSessionRepo struct {
	active map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{active: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) CreateSession(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	session := &domain.Session{ID: int64(len(r.active) + 1), AccountID: accountID, Token: token, ExpiresAt: expiresAt, IsActive: true}
	r.active[token] = session
	return session, nil
}

func (r *memSessionRepo) DeactivateSession(ctx context.Context, token string) error {
	delete(r.active, token)
	return nil
}

func (r *memSessionRepo) DeactivateAccountSessions(ctx context.Context, accountID uuid.UUID) error {
	for token, session := range r.active {
		if session.AccountID == accountID {
			delete(r.active, token)
		}
	}
	return nil
}

func (r *memSessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	if session, ok := r.active[token]; ok {
		return session, nil
	}
	return nil, sql.ErrNoRows
}

type noopResetRepo struct{}

func (noopResetRepo) Create(ctx context.Context, accountID, tokenID uuid.UUID, otpHash, otpSalt []byte, expiresAt time.Time) (*domain.PasswordReset, error) {
	return &domain.PasswordReset{ID: 1, AccountID: accountID, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

func (noopResetRepo) FindActiveByAccount(ctx context.Context, accountID uuid.UUID) (*domain.PasswordReset, error) {
	return nil, sql.ErrNoRows
}

func (noopResetRepo) MarkConsumed(ctx context.Context, id int64) error         { return nil }
func (noopResetRepo) ConsumeByAccount(ctx context.Context, id uuid.UUID) error { return nil }

type authFixture struct {
	auth     *service.AuthService
	accounts *memAccountRepo
	sessions *memSessionRepo
}

func newAuthFixture(t *testing.T, accounts ...*domain.Account) *authFixture {
	t.Helper()
	repo := newMemAccountRepo(accounts...)
	sessions := newMemSessionRepo()
	tokens := util.NewTokenManager("handler-test-secret", time.Hour, 15*time.Minute)
	auth := service.NewAuthService(repo, noopResetRepo{}, sessions, nil, nil, tokens,
		"test-audience", "lms-media", 0, 10*time.Minute, 6)
	return &authFixture{auth: auth, accounts: repo, sessions: sessions}
}

func (f *authFixture) signin(t *testing.T, account *domain.Account) string {
	t.Helper()
	token, expiresAt, err := util.NewTokenManager("handler-test-secret", time.Hour, 15*time.Minute).IssueSession(account.ID, account.Role)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if _, err := f.sessions.CreateSession(context.Background(), account.ID, token, expiresAt); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return token
}

func protectedEcho(fixture *authFixture, roles ...domain.Role) *echo.Echo {
	e := echo.New()
	handler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}
	mws := []echo.MiddlewareFunc{RequireAuth(fixture.auth)}
	if len(roles) > 0 {
		mws = append(mws, RequireRole(roles...))
	}
	e.GET("/protected", handler, mws...)
	return e
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	fixture := newAuthFixture(t)
	e := protectedEcho(fixture)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsBadScheme(t *testing.T) {
	fixture := newAuthFixture(t)
	e := protectedEcho(fixture)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsForgedToken(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Role: domain.RoleStudent}
	fixture := newAuthFixture(t, account)
	e := protectedEcho(fixture)

	forged, _, err := util.NewTokenManager("some-other-secret", time.Hour, time.Minute).IssueSession(account.ID, account.Role)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsLoggedOutToken(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Role: domain.RoleStudent}
	fixture := newAuthFixture(t, account)
	e := protectedEcho(fixture)
	token := fixture.signin(t, account)

	if err := fixture.auth.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	student := &domain.Account{ID: uuid.New(), Role: domain.RoleStudent}
	admin := &domain.Account{ID: uuid.New(), Role: domain.RoleAdmin}
	fixture := newAuthFixture(t, student, admin)
	e := protectedEcho(fixture, domain.RoleAdmin)

	studentToken := fixture.signin(t, student)
	adminToken := fixture.signin(t, admin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student: status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
}

func TestOptionalAuthAttachesAccount(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Role: domain.RoleStudent}
	fixture := newAuthFixture(t, account)
	token := fixture.signin(t, account)

	e := echo.New()
	e.GET("/open", func(c echo.Context) error {
		if viewer, ok := CurrentAccount(c); ok && viewer != nil {
			return c.JSON(http.StatusOK, echo.Map{"viewer": viewer.ID})
		}
		return c.JSON(http.StatusOK, echo.Map{"viewer": nil})
	}, OptionalAuth(fixture.auth))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), account.ID.String()) {
		t.Fatalf("viewer not attached: %s", rec.Body.String())
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	fixture := newAuthFixture(t)
	e := echo.New()
	e.GET("/open", func(c echo.Context) error {
		if _, ok := CurrentAccount(c); ok {
			t.Error("anonymous request must carry no account")
		}
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}, OptionalAuth(fixture.auth))

	for _, header := range []string{"", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: status = %d, want 200", header, rec.Code)
		}
	}
}

func TestSignupEndpoint(t *testing.T) {
	fixture := newAuthFixture(t)
	e := echo.New()
	RegisterAuth(e, fixture.auth)

	body := `{"name":"Maya","email":"maya@example.com","password":"longenough","confirmPassword":"longenough","role":"student"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var view AccountView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Email != "maya@example.com" || view.Role != domain.RoleStudent {
		t.Fatalf("view = %+v", view)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("response leaks password material")
	}
}

func TestSigninEndpointShortPasswordRejected(t *testing.T) {
	fixture := newAuthFixture(t)
	e := echo.New()
	RegisterAuth(e, fixture.auth)

	body := `{"name":"Maya","email":"maya@example.com","password":"seven77","confirmPassword":"seven77"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestForgotPasswordNeverEnumerates(t *testing.T) {
	fixture := newAuthFixture(t)
	e := echo.New()
	RegisterAuth(e, fixture.auth)

	body := `{"email":"ghost@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown address", rec.Code)
	}
	payload, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(payload), "token") || strings.Contains(string(payload), "otp") {
		t.Fatal("response must not carry reset material")
	}
}
