package listings

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boardinghub/boardinghub-api/internal/events"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePropertyValidation(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, services.NewModerationService(nil), 0, "")
	ctx := context.Background()
	landlord := uuid.New()

	tests := []struct {
		name string
		in   PropertyInput
		want error
	}{
		{"missing title", PropertyInput{Title: "  "}, ErrTitleRequired},
		{"bad type", PropertyInput{Title: "Casa", PropertyType: "castle"}, ErrInvalidPropertyType},
		{"bad gender policy", PropertyInput{Title: "Casa", GenderPolicy: "mixed"}, ErrInvalidGenderPolicy},
		{"negative price", PropertyInput{Title: "Casa", Price: -1}, ErrInvalidPrice},
		{"profanity", PropertyInput{Title: "Cheap rooms", Description: "not a scam"}, ErrInappropriateContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := svc.CreateProperty(ctx, landlord, &in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAmenitiesJSONDropsBlanks(t *testing.T) {
	assert.JSONEq(t, `["wifi","aircon"]`, string(amenitiesJSON([]string{" wifi ", "", "aircon"})))
	assert.JSONEq(t, `[]`, string(amenitiesJSON(nil)))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 404, statusFor(ErrPropertyNotFound))
	assert.Equal(t, 409, statusFor(ErrActiveBookings))
	assert.Equal(t, 400, statusFor(ErrInvalidCategory))
	assert.Equal(t, 500, statusFor(assert.AnError))
}

func TestChangedPublishesListingEvent(t *testing.T) {
	rec := &events.Recorder{}
	svc := NewService(nil, nil, nil, rec, services.NewModerationService(nil), 0, "")
	p := &models.Property{ID: uuid.New(), Status: models.PropertyStatusPending}

	svc.changed(context.Background(), events.ActionUpdate, p)

	require.Len(t, rec.Events, 1)
	assert.Equal(t, events.ActionUpdate, rec.Events[0].Action)
	assert.Equal(t, p.ID.String(), rec.Events[0].PropertyID)
	assert.Equal(t, models.PropertyStatusPending, rec.Events[0].Status)
	assert.False(t, rec.Events[0].OccurredAt.IsZero())
}

func TestDeletePropertyBookingCheck(t *testing.T) {
	tests := []struct {
		name    string
		count   *sqlmock.Rows
		failure error
		want    error
	}{
		{"active bookings", sqlmock.NewRows([]string{"count"}).AddRow(2), nil, ErrActiveBookings},
		{"count fails", nil, errors.New("conn reset"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := testutil.MockDB(t)
			svc := NewService(db, nil, nil, nil, nil, 0, "")
			landlordID, propertyID := uuid.New(), uuid.New()

			mock.ExpectQuery(`SELECT \* FROM "properties" WHERE landlord_id = \$1 AND id = \$2`).
				WillReturnRows(sqlmock.NewRows([]string{"id", "landlord_id", "title", "status"}).
					AddRow(propertyID.String(), landlordID.String(), "Casa Uno", "approved"))
			count := mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings" WHERE property_id = \$1 AND status IN \(\$2,\$3\)`).
				WithArgs(propertyID.String(), "pending", "approved")
			if tt.failure != nil {
				count.WillReturnError(tt.failure)
			} else {
				count.WillReturnRows(tt.count)
			}

			err := svc.DeleteProperty(context.Background(), landlordID, propertyID)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			assert.NotErrorIs(t, err, ErrActiveBookings)
			assert.ErrorIs(t, err, tt.failure)
		})
	}
}
