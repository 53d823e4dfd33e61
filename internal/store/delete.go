package store

import (
	"context"

	"user-management/internal/domain"

	"gorm.io/gorm"
)

// DeleteUserData removes the user's record and everything that hangs off it,
// returning the per-table counts captured before deletion.
func (s *Store) DeleteUserData(ctx context.Context, userID domain.UserID) (map[string]int64, error) {
	deleted := map[string]int64{}

	err := s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		count := func(label string, query *gorm.DB) error {
			var total int64
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			deleted[label] = total
			return nil
		}

		if err := count("users", db.Model(&domain.User{}).Where("id = ?", userID)); err != nil {
			return err
		}
		if err := count("sessions", db.Model(&domain.UserSession{}).Where("user_id = ?", userID)); err != nil {
			return err
		}
		if err := count("learningPaths", db.Model(&domain.LearningPath{}).Where("user_id = ?", userID)); err != nil {
			return err
		}
		if err := count("courseProgress", db.Model(&domain.CourseProgress{}).Where("user_id = ?", userID)); err != nil {
			return err
		}
		if err := count("auditLogs", db.Model(&domain.AuditLog{}).Where("user_id = ?", userID)); err != nil {
			return err
		}

		for _, model := range []any{&domain.CourseProgress{}, &domain.LearningPath{}, &domain.UserSession{}, &domain.AuditLog{}} {
			if err := db.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return db.Where("id = ?", userID).Delete(&domain.User{}).Error
	})

	return deleted, translate("delete user data", err)
}
