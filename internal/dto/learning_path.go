package dto

import (
	"user-management/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateCourseProgressRequest struct {
	Status              *string  `json:"status,omitempty"`
	ProgressPercentage  *float64 `json:"progress_percentage,omitempty"`
	TimeInvestedMinutes *int     `json:"time_invested_minutes,omitempty"`
	UserRating          *int     `json:"user_rating,omitempty"`
	PersonalNotes       *string  `json:"personal_notes,omitempty"`
}

func (r UpdateCourseProgressRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(
			string(domain.CourseNotStarted),
			string(domain.CourseInProgress),
			string(domain.CourseCompleted),
			string(domain.CourseSkipped),
		)),
		validation.Field(&r.ProgressPercentage, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&r.TimeInvestedMinutes, validation.Min(0)),
		validation.Field(&r.UserRating, validation.Min(1), validation.Max(5)),
		validation.Field(&r.PersonalNotes, validation.Length(0, 2000)),
	)
}

func (r UpdateCourseProgressRequest) ToDomain() domain.CourseProgressUpdate {
	u := domain.CourseProgressUpdate{
		ProgressPercentage:  r.ProgressPercentage,
		TimeInvestedMinutes: r.TimeInvestedMinutes,
		UserRating:          r.UserRating,
		PersonalNotes:       r.PersonalNotes,
	}
	if r.Status != nil {
		s := domain.CourseStatus(*r.Status)
		u.Status = &s
	}
	return u
}

type LearningPathsResponse struct {
	LearningPaths []domain.LearningPath `json:"learning_paths"`
}

type LearningPathResponse struct {
	LearningPath *domain.LearningPath `json:"learning_path"`
}

type ProgressResponse struct {
	Progress domain.ProgressSummary `json:"progress"`
}
