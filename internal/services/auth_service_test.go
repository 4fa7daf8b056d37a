package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret",
		JWTAccessExpiry:      15 * time.Minute,
		JWTRefreshExpiry:     time.Hour,
		VerificationTokenTTL: time.Hour,
		ResetTokenTTL:        time.Hour,
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(nil, testConfig(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"missing at", dto.RegisterRequest{Email: "tenant.example.com", Password: "password1"}, ErrInvalidEmail},
		{"leading at", dto.RegisterRequest{Email: "@example.com", Password: "password1"}, ErrInvalidEmail},
		{"short password", dto.RegisterRequest{Email: "a@example.com", Password: "short"}, ErrWeakPassword},
		{"admin role", dto.RegisterRequest{Email: "a@example.com", Password: "password1", Role: "admin"}, ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewAuthService(db, testConfig(), nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "app_users" WHERE email = \$1`).
		WithArgs("taken@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(uuid.NewString(), "taken@example.com"))

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "  Taken@Example.com ", Password: "password1", Role: "tenant",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, "An account with this email already exists", err.Error())
}

func userRow(t *testing.T, status string, verified bool) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "email", "password", "role", "status", "email_verified"}).
		AddRow(uuid.NewString(), "user@example.com", string(hash), "tenant", status, verified)
}

func TestLoginRefusals(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "app_users"`).WillReturnRows(userRow(t, "active", true))

		_, err := NewAuthService(db, testConfig(), nil, nil).
			Login(&dto.LoginRequest{Email: "user@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "app_users"`).WillReturnError(gorm.ErrRecordNotFound)

		_, err := NewAuthService(db, testConfig(), nil, nil).
			Login(&dto.LoginRequest{Email: "ghost@example.com", Password: "password1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "app_users"`).WillReturnRows(userRow(t, "suspended", true))

		_, err := NewAuthService(db, testConfig(), nil, nil).
			Login(&dto.LoginRequest{Email: "user@example.com", Password: "password1"})
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})

	t.Run("unverified", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "app_users"`).WillReturnRows(userRow(t, "active", false))

		_, err := NewAuthService(db, testConfig(), nil, nil).
			Login(&dto.LoginRequest{Email: "user@example.com", Password: "password1"})
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})
}

func TestDeleteAccountNeedsPassword(t *testing.T) {
	svc := NewAuthService(nil, testConfig(), nil, nil)
	assert.ErrorIs(t, svc.DeleteAccount(uuid.New(), ""), ErrPasswordRequired)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_app_users_email" (SQLSTATE 23505)`)))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}

var tokenColumns = []string{"id", "user_id", "purpose", "code_hash", "expires_at", "attempts", "consumed_at"}

type redeemFixture struct {
	svc     *AuthService
	mock    sqlmock.Sqlmock
	userID  uuid.UUID
	tokenID uuid.UUID
	now     time.Time
}

func newRedeemFixture(t *testing.T) *redeemFixture {
	t.Helper()
	db, mock := testutil.MockDB(t)
	svc := NewAuthService(db, testConfig(), nil, nil)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return &redeemFixture{svc: svc, mock: mock, userID: uuid.New(), tokenID: uuid.New(), now: now}
}

// expectLookup queues the user and newest-token reads for a code redemption.
func (f *redeemFixture) expectLookup(purpose string, verified bool, attempts int, expiresAt time.Time) {
	f.mock.ExpectQuery(`SELECT \* FROM "app_users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status", "email_verified"}).
			AddRow(f.userID.String(), "user@example.com", "tenant", "active", verified))
	f.mock.ExpectQuery(`SELECT \* FROM "verification_tokens" WHERE user_id = \$1 AND purpose = \$2 AND consumed_at IS NULL ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(tokenColumns).
			AddRow(f.tokenID.String(), f.userID.String(), purpose, hashToken("482913"), expiresAt, attempts, nil))
}

func TestVerifyEmailConsumesCodeAndSignsIn(t *testing.T) {
	f := newRedeemFixture(t)
	f.expectLookup("email_verification", false, 0, f.now.Add(time.Hour))
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`UPDATE "verification_tokens" SET "consumed_at"=\$1 WHERE id = \$2 AND consumed_at IS NULL`).
		WithArgs(sqlmock.AnyArg(), f.tokenID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`UPDATE "app_users" SET "email_verified"=\$1,"email_verified_at"=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`INSERT INTO "refresh_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	f.mock.ExpectCommit()

	resp, err := f.svc.VerifyEmail(&dto.VerifyEmailRequest{Email: "User@Example.com", Code: " 482913 "})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, resp.User.EmailVerified)
}

func TestVerifyEmailRefusesExpiredCode(t *testing.T) {
	f := newRedeemFixture(t)
	f.expectLookup("email_verification", false, 0, f.now.Add(-time.Minute))

	_, err := f.svc.VerifyEmail(&dto.VerifyEmailRequest{Email: "user@example.com", Code: "482913"})
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestVerifyEmailRefusesCodeRedeemedConcurrently(t *testing.T) {
	f := newRedeemFixture(t)
	f.expectLookup("email_verification", false, 0, f.now.Add(time.Hour))
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`UPDATE "verification_tokens" SET "consumed_at"=\$1 WHERE id = \$2 AND consumed_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectRollback()

	_, err := f.svc.VerifyEmail(&dto.VerifyEmailRequest{Email: "user@example.com", Code: "482913"})
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestWrongCodeCountsAnAttempt(t *testing.T) {
	f := newRedeemFixture(t)
	f.expectLookup("email_verification", false, 1, f.now.Add(time.Hour))
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`UPDATE "verification_tokens" SET "attempts"=attempts \+ 1 WHERE id = \$1`).
		WithArgs(f.tokenID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	_, err := f.svc.VerifyEmail(&dto.VerifyEmailRequest{Email: "user@example.com", Code: "000000"})
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestWrongCodesLockTheToken(t *testing.T) {
	f := newRedeemFixture(t)
	f.expectLookup("password_reset", true, maxCodeAttempts-1, f.now.Add(time.Hour))
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`UPDATE "verification_tokens" SET "attempts"=attempts \+ 1,"consumed_at"=\$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), f.tokenID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	err := f.svc.ResetPassword(&dto.ResetPasswordRequest{Email: "user@example.com", Code: "000000", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestResetPasswordRevokesRefreshTokens(t *testing.T) {
	f := newRedeemFixture(t)
	f.expectLookup("password_reset", true, 0, f.now.Add(time.Hour))
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`UPDATE "verification_tokens" SET "consumed_at"=\$1 WHERE id = \$2 AND consumed_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`UPDATE "app_users" SET "password"=\$1,"updated_at"=\$2 WHERE "id" = \$3`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), f.userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`UPDATE "refresh_tokens" SET "revoked"=\$1 WHERE user_id = \$2 AND revoked = false`).
		WithArgs(true, f.userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectCommit()

	err := f.svc.ResetPassword(&dto.ResetPasswordRequest{Email: "user@example.com", Code: "482913", NewPassword: "new-password"})
	require.NoError(t, err)
}
