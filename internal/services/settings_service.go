package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSettingNotFound     = errors.New("setting not found")
	ErrInvalidSettingType  = errors.New("invalid type: must be string, bool, int, or json")
	ErrInvalidSettingValue = errors.New("value does not match its type")
)

const (
	SettingMaxBookingMonths = "max_booking_months"
	SettingSupportEmail     = "support_email"
)

var defaultSettings = []models.Setting{
	{Key: "site_name", Value: "BoardingHub", Type: "string"},
	{Key: SettingSupportEmail, Value: "support@boardinghub.app", Type: "string"},
	{Key: SettingMaxBookingMonths, Value: "12", Type: "int"},
	{Key: "maintenance_mode", Value: "false", Type: "bool"},
	{Key: "announcement_title", Value: "", Type: "string"},
	{Key: "announcement_message", Value: "", Type: "string"},
}

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// TypedValue decodes a stored value according to its declared type.
func TypedValue(valueType, raw string) (interface{}, error) {
	switch valueType {
	case "bool":
		return strconv.ParseBool(raw)
	case "int":
		return strconv.Atoi(raw)
	case "json":
		var v interface{}
		err := json.Unmarshal([]byte(raw), &v)
		return v, err
	case "string", "":
		return raw, nil
	}
	return nil, ErrInvalidSettingType
}

func (s *SettingsService) All() (map[string]interface{}, error) {
	var settings []models.Setting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(settings))
	for _, st := range settings {
		v, err := TypedValue(st.Type, st.Value)
		if err != nil {
			v = st.Value
		}
		result[st.Key] = v
	}
	return result, nil
}

func (s *SettingsService) Set(key, value, valueType string) (*models.Setting, error) {
	if valueType == "" {
		valueType = "string"
	}
	if _, err := TypedValue(valueType, value); err != nil {
		if errors.Is(err, ErrInvalidSettingType) {
			return nil, err
		}
		return nil, ErrInvalidSettingValue
	}

	var setting models.Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{ID: uuid.New(), Key: key, Value: value, Type: valueType}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, fmt.Errorf("failed to create setting: %w", err)
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}

	setting.Value = value
	setting.Type = valueType
	if err := s.db.Save(&setting).Error; err != nil {
		return nil, fmt.Errorf("failed to update setting: %w", err)
	}
	return &setting, nil
}

func (s *SettingsService) Delete(key string) error {
	result := s.db.Where("key = ?", key).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}

// Int returns an int setting or fallback when missing or malformed.
func (s *SettingsService) Int(key string, fallback int) int {
	if s == nil || s.db == nil {
		return fallback
	}
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return fallback
	}
	n, err := strconv.Atoi(setting.Value)
	if err != nil {
		return fallback
	}
	return n
}

// SeedDefaults inserts default settings that do not exist yet.
func (s *SettingsService) SeedDefaults() error {
	for _, def := range defaultSettings {
		var existing models.Setting
		err := s.db.Where("key = ?", def.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			st := def
			st.ID = uuid.New()
			if err := s.db.Create(&st).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
