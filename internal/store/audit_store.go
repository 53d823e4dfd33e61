package store

import (
	"context"

	"user-management/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditStore struct{ db *gorm.DB }

func (s *Store) AuditLogs() *AuditStore { return &AuditStore{db: s.DB} }

func (a *AuditStore) Append(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return translate("append audit log", a.db.WithContext(ctx).Create(entry).Error)
}

// ListByUser returns the newest entries first.
func (a *AuditStore) ListByUser(ctx context.Context, userID domain.UserID, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.AuditLog
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, translate("list audit logs", err)
	}
	return out, nil
}
