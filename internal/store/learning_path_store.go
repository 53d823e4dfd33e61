package store

import (
	"context"
	"time"

	"user-management/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearningPathStore struct{ db *gorm.DB }

func (s *Store) LearningPaths() *LearningPathStore { return &LearningPathStore{db: s.DB} }

func orderedCourses(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }

func (l *LearningPathStore) Create(ctx context.Context, p *domain.LearningPath) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Courses {
		if p.Courses[i].ID == uuid.Nil {
			p.Courses[i].ID = uuid.New()
		}
		p.Courses[i].PathID = p.ID
		p.Courses[i].UserID = p.UserID
	}
	return translate("create learning path", l.db.WithContext(ctx).Create(p).Error)
}

func (l *LearningPathStore) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.LearningPath, error) {
	var out []domain.LearningPath
	err := l.db.WithContext(ctx).
		Preload("Courses", orderedCourses).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list learning paths", err)
	}
	return out, nil
}

func (l *LearningPathStore) ListPublic(ctx context.Context, limit int) ([]domain.LearningPath, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.LearningPath
	err := l.db.WithContext(ctx).
		Preload("Courses", orderedCourses).
		Where("is_public = ?", true).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, translate("list public learning paths", err)
	}
	return out, nil
}

// FindByID returns nil when the path does not exist or belongs to someone else.
func (l *LearningPathStore) FindByID(ctx context.Context, userID domain.UserID, pathID domain.PathID) (*domain.LearningPath, error) {
	var p domain.LearningPath
	err := l.db.WithContext(ctx).
		Preload("Courses", orderedCourses).
		Where("user_id = ? AND id = ?", userID, pathID).
		Take(&p).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find learning path", err)
	}
	return &p, nil
}

// UpdateCourseProgress applies upd to one course and recomputes the owning
// path in the same transaction. It returns nil when the course is not part of
// the user's path.
func (l *LearningPathStore) UpdateCourseProgress(ctx context.Context, userID domain.UserID, pathID domain.PathID, courseID string, upd domain.CourseProgressUpdate, now time.Time) (*domain.LearningPath, error) {
	now = now.UTC()
	var updated bool

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var path domain.LearningPath
		q := tx
		// sqlite has no row locks; the transaction alone serializes writers there.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := q.Where("user_id = ? AND id = ?", userID, pathID).Take(&path).Error
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		var course domain.CourseProgress
		err = tx.Where("user_id = ? AND path_id = ? AND course_id = ?", userID, pathID, courseID).Take(&course).Error
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		course.Apply(upd, now)
		if err := tx.Save(&course).Error; err != nil {
			return err
		}

		var courses []domain.CourseProgress
		if err := tx.Where("path_id = ?", pathID).Find(&courses).Error; err != nil {
			return err
		}
		path.Recompute(courses, now)
		if err := tx.Model(&domain.LearningPath{}).Where("id = ?", pathID).Updates(map[string]any{
			"progress_percentage": path.ProgressPercentage,
			"status":              path.Status,
			"completed_at":        path.CompletedAt,
			"updated_at":          path.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return nil, translate("update course progress", err)
	}
	if !updated {
		return nil, nil
	}
	return l.FindByID(ctx, userID, pathID)
}

// CoursesByUser returns every course the user tracks across all paths.
func (l *LearningPathStore) CoursesByUser(ctx context.Context, userID domain.UserID) ([]domain.CourseProgress, error) {
	var out []domain.CourseProgress
	if err := l.db.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error; err != nil {
		return nil, translate("list courses", err)
	}
	return out, nil
}

// LatestPathStatus returns the status of the most recently updated path, or
// "" when the user has none.
func (l *LearningPathStore) LatestPathStatus(ctx context.Context, userID domain.UserID) (domain.PathStatus, error) {
	var p domain.LearningPath
	err := l.db.WithContext(ctx).
		Select("status").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Take(&p).Error
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", translate("latest path status", err)
	}
	return p.Status, nil
}
