package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"user-management/internal/domain"
	"user-management/internal/dto"
	"user-management/internal/observability/middleware"
	"user-management/internal/store"

	"github.com/google/uuid"
)

const publicPathsLimit = 50

type learningPathStore interface {
	ListByUser(ctx context.Context, userID domain.UserID) ([]domain.LearningPath, error)
	ListPublic(ctx context.Context, limit int) ([]domain.LearningPath, error)
	FindByID(ctx context.Context, userID domain.UserID, pathID domain.PathID) (*domain.LearningPath, error)
	UpdateCourseProgress(ctx context.Context, userID domain.UserID, pathID domain.PathID, courseID string, upd domain.CourseProgressUpdate, now time.Time) (*domain.LearningPath, error)
	CoursesByUser(ctx context.Context, userID domain.UserID) ([]domain.CourseProgress, error)
	LatestPathStatus(ctx context.Context, userID domain.UserID) (domain.PathStatus, error)
}

type LearningPathServiceImpl struct {
	Paths learningPathStore
	Now   func() time.Time
}

func NewLearningPathServiceImpl(st *store.Store) *LearningPathServiceImpl {
	return &LearningPathServiceImpl{Paths: st.LearningPaths(), Now: time.Now}
}

func (l *LearningPathServiceImpl) List(ctx context.Context, userID domain.UserID) ([]domain.LearningPath, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrMissingUserID
	}
	paths, err := l.Paths.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		paths = []domain.LearningPath{}
	}
	return paths, nil
}

func (l *LearningPathServiceImpl) ListPublic(ctx context.Context) ([]domain.LearningPath, error) {
	paths, err := l.Paths.ListPublic(ctx, publicPathsLimit)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		paths = []domain.LearningPath{}
	}
	return paths, nil
}

func (l *LearningPathServiceImpl) Get(ctx context.Context, userID domain.UserID, pathID domain.PathID) (*domain.LearningPath, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrMissingUserID
	}
	if pathID == uuid.Nil {
		return nil, domain.ErrMissingPathID
	}
	p, err := l.Paths.FindByID(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrLearningPathNotFound
	}
	return p, nil
}

// UpdateCourseProgress records progress on one course and returns the path
// with its recomputed aggregate.
func (l *LearningPathServiceImpl) UpdateCourseProgress(ctx context.Context, userID domain.UserID, pathID domain.PathID, courseID string, r dto.UpdateCourseProgressRequest) (*domain.LearningPath, error) {
	switch {
	case userID == uuid.Nil:
		return nil, domain.ErrMissingUserID
	case pathID == uuid.Nil:
		return nil, domain.ErrMissingPathID
	case strings.TrimSpace(courseID) == "":
		return nil, domain.ErrMissingCourseID
	}
	if err := r.Validate(); err != nil {
		if details := dto.FieldErrors(err); details != nil {
			return nil, domain.ErrInvalidInput.WithMessage("invalid course progress").WithDetails(details)
		}
		return nil, err
	}

	p, err := l.Paths.UpdateCourseProgress(ctx, userID, pathID, courseID, r.ToDomain(), l.Now())
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrCourseProgressNotFound
	}
	slog.Info("course progress updated", append(middleware.LogAttrs(ctx),
		"user_id", userID, "path_id", pathID, "course_id", courseID, "path_status", p.Status)...)
	return p, nil
}

func (l *LearningPathServiceImpl) Progress(ctx context.Context, userID domain.UserID) (*domain.ProgressSummary, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrMissingUserID
	}
	courses, err := l.Paths.CoursesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := l.Paths.LatestPathStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := domain.SummarizeProgress(courses, latest)
	return &s, nil
}
