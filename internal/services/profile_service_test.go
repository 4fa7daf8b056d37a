package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileColumns = []string{"id", "user_id", "email", "business_name", "verification_status"}

func TestResolveRoleKeepsStoredRole(t *testing.T) {
	// Without a database any lookup or rewrite would panic: a stored role,
	// such as an admin demotion to tenant, is final.
	svc := NewProfileService(nil)

	for _, role := range []string{models.RoleTenant, models.RoleLandlord, models.RoleAdmin} {
		user := &models.User{ID: uuid.New(), Email: "owner@example.com", Role: role}
		assert.Equal(t, role, svc.ResolveRole(user))
		assert.Equal(t, role, user.Role)
	}
}

func TestResolveRoleFillsEmptyRoleFromProfile(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewProfileService(db)
	user := &models.User{ID: uuid.New(), Email: "owner@example.com"}

	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(uuid.NewString(), user.ID.String(), user.Email, "Casa Uno", "verified"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "app_users" SET "role"=\$1`).
		WithArgs(models.RoleLandlord, sqlmock.AnyArg(), user.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.Equal(t, models.RoleLandlord, svc.ResolveRole(user))
}

func TestResolveRoleDefaultsUnknownRoleToTenant(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewProfileService(db)
	user := &models.User{ID: uuid.New(), Email: "guest@example.com", Role: "owner"}

	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "app_users" SET "role"=\$1`).
		WithArgs(models.RoleTenant, sqlmock.AnyArg(), user.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.Equal(t, models.RoleTenant, svc.ResolveRole(user))
}

func TestResolveLinksProfileFoundByEmail(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewProfileService(db)
	user := &models.User{ID: uuid.New(), Email: "Owner@Example.com"}
	profileID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE email = \$1`).
		WithArgs("owner@example.com", 1).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(profileID.String(), nil, "owner@example.com", "Casa Uno", "unverified"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "landlord_profiles" SET "user_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	profile, err := svc.Resolve(user, false)
	require.NoError(t, err)
	assert.Equal(t, profileID, profile.ID)
	require.NotNil(t, profile.UserID)
	assert.Equal(t, user.ID, *profile.UserID)
}

func TestResolveIgnoresProfileLinkedToAnotherUser(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewProfileService(db)
	user := &models.User{ID: uuid.New(), Email: "owner@example.com"}

	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(uuid.NewString(), uuid.NewString(), "owner@example.com", "Casa Uno", "verified"))

	_, err := svc.Resolve(user, false)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestResolveRetriesLookupAfterConcurrentCreate(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewProfileService(db)
	user := &models.User{ID: uuid.New(), Email: "owner@example.com", FullName: "Ana"}
	profileID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "landlord_profiles"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_landlord_profiles_user_id" (SQLSTATE 23505)`))
	mock.ExpectRollback()
	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(profileID.String(), user.ID.String(), user.Email, "Ana", "unverified"))

	profile, err := svc.Resolve(user, true)
	require.NoError(t, err)
	assert.Equal(t, profileID, profile.ID)
}
