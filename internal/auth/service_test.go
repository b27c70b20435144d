package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-chillwalk/internal/shared/validate"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestSignupProvisionsProfileAndLogin(t *testing.T) {
	mock := newMock(t)
	createdAt := time.Now().Add(-time.Minute)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "walker@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))
	mock.ExpectExec(`INSERT INTO profiles \(id, username\)\s+SELECT id, email FROM users WHERE id = \$1\s+ON CONFLICT \(id\) DO NOTHING`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	user, tokens, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "walker@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == "" || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected user and tokens")
	}

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at`).
		WithArgs("walker@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(user.ID, user.Email, user.PasswordHash, createdAt))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), user.ID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, loginTokens, err := svc.Login(context.Background(), LoginRequest{Email: "walker@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginTokens.AccessToken == "" || loginTokens.RefreshToken == "" {
		t.Fatalf("expected login tokens")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignupValidatesBeforeWriting(t *testing.T) {
	mock := newMock(t)
	svc := NewService("test-secret", mock)

	cases := map[string]SignupRequest{
		"email is required":                   {Password: "password123"},
		"email must be a valid email address": {Email: "walker", Password: "password123"},
		"password must be at least 6":         {Email: "walker@example.com", Password: "abc"},
	}
	for want, req := range cases {
		_, _, err := svc.Signup(context.Background(), req)
		if !validate.IsInvalid(err) || err.Error() != want {
			t.Fatalf("signup %+v: got %v, want %q", req, err, want)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "walker@example.com", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	svc := NewService("test-secret", mock)
	_, _, err := svc.Signup(context.Background(), SignupRequest{Email: "walker@example.com", Password: "password123"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	mock := newMock(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at`).
		WithArgs("walker@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("user-1", "walker@example.com", string(hash), time.Now()))
	mock.ExpectQuery(`SELECT id, email, password_hash, created_at`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService("test-secret", mock)
	if _, _, err := svc.Login(context.Background(), LoginRequest{Email: "walker@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureProfileAndProfile(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery(`SELECT id, username, COALESCE\(avatar_url, ''\), created_at\s+FROM profiles`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "avatar_url", "created_at"}).
			AddRow("user-1", "walker@example.com", "", time.Now()))
	mock.ExpectQuery(`FROM profiles`).
		WithArgs("user-2").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService("test-secret", mock)
	if err := svc.EnsureProfile(context.Background(), "user-1"); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	p, err := svc.Profile(context.Background(), "user-1")
	if err != nil || p.Username != "walker@example.com" {
		t.Fatalf("profile: %+v %v", p, err)
	}
	if _, err := svc.Profile(context.Background(), "user-2"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("missing profile: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestValidateRefreshTokenAndLogout(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	tokens, err := svc.GenerateTokens(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow("user-1", time.Now().Add(5*time.Minute)))

	userID, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil || userID != "user-1" {
		t.Fatalf("validate refresh: %s %v", userID, err)
	}

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = now\(\)`).
		WithArgs(tokens.RefreshToken).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnError(pgx.ErrNoRows)

	if err := svc.Logout(context.Background(), tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token accepted: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestValidateAccessTokenRejectsForeignSecret(t *testing.T) {
	other := NewService("other-secret", nil)
	token, err := other.signToken("user-1", TokenTypeAccess, accessTokenTTL)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	svc := NewService("test-secret", nil)
	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	mine, _ := svc.signToken("user-1", TokenTypeAccess, accessTokenTTL)
	if id, err := svc.ValidateAccessToken(mine); err != nil || id != "user-1" {
		t.Fatalf("own token: %s %v", id, err)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock)
	tokens, err := svc.GenerateTokens(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	if _, err := svc.ValidateAccessToken(tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestServiceWithoutStore(t *testing.T) {
	svc := NewService("test-secret", nil)
	ctx := context.Background()

	if _, _, err := svc.Signup(ctx, SignupRequest{Email: "walker@example.com", Password: "secret123"}); !errors.Is(err, ErrNoStore) {
		t.Fatalf("signup: expected ErrNoStore, got %v", err)
	}
	if _, _, err := svc.Signup(ctx, SignupRequest{Email: "not-an-email", Password: "secret123"}); !validate.IsInvalid(err) {
		t.Fatalf("signup: expected validation error first, got %v", err)
	}
	if _, _, err := svc.Login(ctx, LoginRequest{Email: "walker@example.com", Password: "secret123"}); !errors.Is(err, ErrNoStore) {
		t.Fatalf("login: expected ErrNoStore, got %v", err)
	}
	if _, err := svc.Profile(ctx, "user-1"); !errors.Is(err, ErrNoStore) {
		t.Fatalf("profile: expected ErrNoStore, got %v", err)
	}
	if err := svc.EnsureProfile(ctx, "user-1"); !errors.Is(err, ErrNoStore) {
		t.Fatalf("ensure profile: expected ErrNoStore, got %v", err)
	}
	if _, err := svc.GenerateTokens(ctx, "user-1"); !errors.Is(err, ErrNoStore) {
		t.Fatalf("generate tokens: expected ErrNoStore, got %v", err)
	}
	if _, err := svc.ValidateRefreshToken(ctx, "anything"); !errors.Is(err, ErrNoStore) {
		t.Fatalf("refresh: expected ErrNoStore, got %v", err)
	}
	if err := svc.Logout(ctx, "anything"); !errors.Is(err, ErrNoStore) {
		t.Fatalf("logout: expected ErrNoStore, got %v", err)
	}
}
