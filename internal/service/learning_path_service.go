package service

import (
	"context"

	"user-management/internal/domain"
	"user-management/internal/dto"
)

type LearningPathService interface {
	List(ctx context.Context, userID domain.UserID) ([]domain.LearningPath, error)
	ListPublic(ctx context.Context) ([]domain.LearningPath, error)
	Get(ctx context.Context, userID domain.UserID, pathID domain.PathID) (*domain.LearningPath, error)
	UpdateCourseProgress(ctx context.Context, userID domain.UserID, pathID domain.PathID, courseID string, r dto.UpdateCourseProgressRequest) (*domain.LearningPath, error)
	Progress(ctx context.Context, userID domain.UserID) (*domain.ProgressSummary, error)
}
