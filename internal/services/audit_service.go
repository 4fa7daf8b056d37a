package services

import (
	"encoding/json"
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends an audit entry. Failures are logged, never returned.
func (s *AuditService) Record(actorID uuid.UUID, action, entityType, entityID string, details map[string]interface{}) {
	if s == nil {
		return
	}
	entry := models.AuditLog{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSON("{}"),
	}
	if actorID != uuid.Nil {
		entry.ActorID = &actorID
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(b)
		}
	}
	if err := s.db.Create(&entry).Error; err != nil {
		slog.Warn("audit log write failed", "action", action, "entity_type", entityType, "entity_id", entityID, "error", err)
	}
}

type AuditFilter struct {
	Action     string
	EntityType string
	ActorID    *uuid.UUID
}

func (s *AuditService) List(f AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{})
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}
	if f.ActorID != nil {
		query = query.Where("actor_id = ?", *f.ActorID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
