package permits

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/storage"
	"github.com/boardinghub/boardinghub-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRejectRequiresRemarks(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, 0)
	_, err := svc.Review(uuid.New(), uuid.New(), false, "   ")
	assert.ErrorIs(t, err, ErrRemarksRequired)
}

func TestUploadRequiresTypeAndFile(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, 0)
	ctx := context.Background()

	_, err := svc.Upload(ctx, uuid.New(), " ", "", nil)
	assert.ErrorIs(t, err, ErrPermitTypeRequired)

	_, err = svc.Upload(ctx, uuid.New(), "business", "", nil)
	assert.ErrorIs(t, err, ErrFileRequired)
}

func TestReviewUnknownPermit(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewService(db, nil, nil, nil, nil, 0)

	mock.ExpectQuery(`SELECT \* FROM "landlord_permits"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Review(uuid.New(), uuid.New(), true, "")
	assert.ErrorIs(t, err, ErrPermitNotFound)
}

func TestReviewAlreadyDecided(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewService(db, nil, nil, nil, nil, 0)

	permitID, profileID := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "landlord_permits"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "landlord_profile_id", "permit_type", "status"}).
			AddRow(permitID.String(), profileID.String(), "business", "approved"))
	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(profileID.String(), "owner@example.com"))

	_, err := svc.Review(uuid.New(), permitID, true, "")
	assert.ErrorIs(t, err, ErrPermitAlreadyFinal)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, 0)
	_, _, err := svc.List("lost", 20, 0)
	require.ErrorIs(t, err, ErrInvalidPermitStatus)
}

var (
	userColumns    = []string{"id", "email", "role", "status"}
	profileColumns = []string{"id", "user_id", "email", "business_name", "verification_status"}
	permitColumns  = []string{"id", "landlord_profile_id", "permit_type", "permit_number", "file_url", "storage_key", "mime_type", "status", "remarks"}
)

const pdfBody = "%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\n"

// pdfUpload builds the file header a multipart form parse would hand over.
func pdfUpload(t *testing.T) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "permit.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte(pdfBody))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

// expectLandlord queues the user and profile reads behind Service.Profile.
func expectLandlord(mock sqlmock.Sqlmock, userID, profileID uuid.UUID, status string) {
	mock.ExpectQuery(`SELECT \* FROM "app_users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userID.String(), "owner@example.com", models.RoleLandlord, "active"))
	mock.ExpectQuery(`SELECT \* FROM "landlord_profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(profileID.String(), userID.String(), "owner@example.com", "Casa Uno", status))
}

func TestUploadReplacesRejectedPermit(t *testing.T) {
	db, mock := testutil.MockDB(t)
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	svc := NewService(db, store, services.NewProfileService(db), nil, nil, 1<<20)

	userID, profileID, permitID := uuid.New(), uuid.New(), uuid.New()
	expectLandlord(mock, userID, profileID, models.ProfileRejected)
	mock.ExpectQuery(`SELECT \* FROM "landlord_permits" WHERE landlord_profile_id = \$1 AND permit_type = \$2 ORDER BY created_at DESC`).
		WithArgs(profileID.String(), "business", 1).
		WillReturnRows(sqlmock.NewRows(permitColumns).
			AddRow(permitID.String(), profileID.String(), "business", "BP-1", LandlordFilePath(permitID),
				"permits/"+profileID.String()+"/old.pdf", "application/pdf", models.PermitStatusRejected, "Blurry scan"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "landlord_permits" SET "file_url"=\$1,"mime_type"=\$2,"permit_number"=\$3,"remarks"=\$4,"reviewed_at"=\$5,"reviewed_by"=\$6,"status"=\$7,"storage_key"=\$8,"updated_at"=\$9 WHERE "id" = \$10`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "landlord_profiles" SET "verification_status"=\$1,"updated_at"=\$2 WHERE "id" = \$3`).
		WithArgs(models.ProfilePending, sqlmock.AnyArg(), profileID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	permit, err := svc.Upload(context.Background(), userID, " Business ", "BP-2", pdfUpload(t))
	require.NoError(t, err)
	assert.Equal(t, permitID, permit.ID)
	assert.Equal(t, models.PermitStatusPending, permit.Status)
	assert.Empty(t, permit.Remarks)
	assert.Equal(t, "BP-2", permit.PermitNumber)
	assert.Equal(t, "application/pdf", permit.MimeType)
	assert.Equal(t, LandlordFilePath(permitID), permit.FileURL)

	body, err := store.Open(context.Background(), permit.StorageKey)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, string(data))
}

func TestUploadRefusesApprovedPermit(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewService(db, nil, services.NewProfileService(db), nil, nil, 1<<20)

	userID, profileID := uuid.New(), uuid.New()
	expectLandlord(mock, userID, profileID, models.ProfileVerified)
	mock.ExpectQuery(`SELECT \* FROM "landlord_permits" WHERE landlord_profile_id = \$1 AND permit_type = \$2`).
		WillReturnRows(sqlmock.NewRows(permitColumns).
			AddRow(uuid.NewString(), profileID.String(), "business", "BP-1", "", "", "application/pdf", models.PermitStatusApproved, ""))

	_, err := svc.Upload(context.Background(), userID, "business", "BP-2", pdfUpload(t))
	assert.ErrorIs(t, err, ErrPermitLocked)
}

func TestOpenFileChecksOwner(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	profileID, permitID := uuid.New(), uuid.New()
	key := storage.NewKey(permitBucket, profileID.String(), ".pdf")
	_, err = store.Save(ctx, key, bytes.NewReader([]byte(pdfBody)), "application/pdf")
	require.NoError(t, err)

	permitRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(permitColumns).
			AddRow(permitID.String(), profileID.String(), "business", "BP-1", LandlordFilePath(permitID),
				key, "application/pdf", models.PermitStatusPending, "")
	}

	t.Run("owner", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewService(db, store, services.NewProfileService(db), nil, nil, 1<<20)
		owner := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "landlord_permits" WHERE id = \$1`).WillReturnRows(permitRow())
		expectLandlord(mock, owner, profileID, models.ProfilePending)

		file, err := svc.OpenFile(ctx, permitID, &owner)
		require.NoError(t, err)
		defer file.Body.Close()
		assert.Equal(t, "application/pdf", file.MimeType)
		assert.Equal(t, "business-permit.pdf", file.Name)
	})

	t.Run("another landlord", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewService(db, store, services.NewProfileService(db), nil, nil, 1<<20)
		other := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "landlord_permits" WHERE id = \$1`).WillReturnRows(permitRow())
		expectLandlord(mock, other, uuid.New(), models.ProfilePending)

		_, err := svc.OpenFile(ctx, permitID, &other)
		assert.ErrorIs(t, err, ErrPermitNotFound)
	})

	t.Run("admin", func(t *testing.T) {
		db, mock := testutil.MockDB(t)
		svc := NewService(db, store, nil, nil, nil, 1<<20)
		mock.ExpectQuery(`SELECT \* FROM "landlord_permits" WHERE id = \$1`).WillReturnRows(permitRow())

		file, err := svc.OpenFile(ctx, permitID, nil)
		require.NoError(t, err)
		file.Body.Close()
	})
}
