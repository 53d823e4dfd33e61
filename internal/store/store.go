package store

import (
	"context"

	"user-management/internal/domain"

	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.UserSession{},
		&domain.LearningPath{},
		&domain.CourseProgress{},
		&domain.AuditLog{},
	}
}

// AutoMigrate creates or updates the schema. Production deployments run SQL
// migrations instead and leave AUTO_MIGRATE unset.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return translate("auto migrate", err)
	}
	return nil
}
