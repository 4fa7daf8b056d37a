package admin

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCannotTargetSelf(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil)
	self := uuid.New()

	_, err := svc.SetStatus(self, self, models.UserStatusSuspended)
	assert.ErrorIs(t, err, ErrSelfAction)

	_, err = svc.SetRole(self, self, models.RoleTenant)
	assert.ErrorIs(t, err, ErrSelfAction)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), self, self), ErrSelfAction)
}

func TestInputValidation(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil)

	_, err := svc.SetStatus(uuid.New(), uuid.New(), "banned")
	assert.ErrorIs(t, err, ErrInvalidUserStatus)

	_, err = svc.SetRole(uuid.New(), uuid.New(), "owner")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.RejectProperty(context.Background(), uuid.New(), uuid.New(), "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestSuspendRevokesRefreshTokens(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewService(db, nil, nil, nil, nil)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "app_users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status"}).
			AddRow(userID.String(), "tenant@example.com", "tenant", "active"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "app_users" SET "status"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "refresh_tokens" SET "revoked"`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	user, err := svc.SetStatus(uuid.New(), userID, models.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, user.Status)
}

func TestSetStatusUnknownUser(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewService(db, nil, nil, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "app_users"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.SetStatus(uuid.New(), uuid.New(), models.UserStatusActive)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApproveRequiresPermit(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewService(db, nil, nil, nil, nil)
	propertyID, landlordID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "properties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "landlord_id", "title", "status"}).
			AddRow(propertyID.String(), landlordID.String(), "Green Dorm", models.PropertyStatusPending))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "landlord_permits" JOIN landlord_profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := svc.ApproveProperty(context.Background(), uuid.New(), propertyID)
	assert.ErrorIs(t, err, ErrPermitNotApproved)
}

func TestApproveOnlyFromPendingOrRejected(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewService(db, nil, nil, nil, nil)
	propertyID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "properties"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "landlord_id", "title", "status"}).
			AddRow(propertyID.String(), uuid.NewString(), "Archived Flat", models.PropertyStatusArchived))

	_, err := svc.ApproveProperty(context.Background(), uuid.New(), propertyID)
	assert.ErrorIs(t, err, ErrNotReviewable)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestEnsureAdminRejectsBadEmail(t *testing.T) {
	_, _, err := EnsureAdmin(nil, "not-an-email", "longenough")
	assert.ErrorIs(t, err, services.ErrInvalidEmail)
}

func TestEnsureAdminPromotesExisting(t *testing.T) {
	db, mock := testutil.MockDB(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "app_users" WHERE email = \$1`).
		WithArgs("ops@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status"}).
			AddRow(userID.String(), "ops@example.com", "landlord", "suspended"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "app_users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, created, err := EnsureAdmin(db, " Ops@Example.com ", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status)
}

func TestEnsureAdminNewAccountNeedsPassword(t *testing.T) {
	db, mock := testutil.MockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "app_users"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := EnsureAdmin(db, "new@example.com", "short")
	assert.ErrorIs(t, err, services.ErrWeakPassword)
}
