package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedValue(t *testing.T) {
	v, err := TypedValue("bool", "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = TypedValue("int", "12")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	v, err = TypedValue("json", `{"tiers":[1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"tiers": []interface{}{1.0, 2.0}}, v)

	v, err = TypedValue("", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = TypedValue("int", "twelve")
	assert.Error(t, err)

	_, err = TypedValue("float", "1.5")
	assert.ErrorIs(t, err, ErrInvalidSettingType)
}

func TestSetValidatesBeforeWriting(t *testing.T) {
	svc := NewSettingsService(nil)

	_, err := svc.Set(SettingMaxBookingMonths, "many", "int")
	assert.ErrorIs(t, err, ErrInvalidSettingValue)

	_, err = svc.Set("theme", "dark", "enum")
	assert.ErrorIs(t, err, ErrInvalidSettingType)
}

func TestIntFallsBackWithoutDB(t *testing.T) {
	var svc *SettingsService
	assert.Equal(t, 12, svc.Int(SettingMaxBookingMonths, 12))
}
