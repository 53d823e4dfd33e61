package domain

import (
	"math"
	"time"
)

type PathStatus string

const (
	PathActive    PathStatus = "active"
	PathCompleted PathStatus = "completed"
	PathPaused    PathStatus = "paused"
)

type CourseStatus string

const (
	CourseNotStarted CourseStatus = "not_started"
	CourseInProgress CourseStatus = "in_progress"
	CourseCompleted  CourseStatus = "completed"
	CourseSkipped    CourseStatus = "skipped"
)

func (s CourseStatus) Valid() bool {
	switch s {
	case CourseNotStarted, CourseInProgress, CourseCompleted, CourseSkipped:
		return true
	}
	return false
}

// finished courses count towards path completion.
func (s CourseStatus) finished() bool { return s == CourseCompleted || s == CourseSkipped }

type LearningPath struct {
	ID                   PathID           `gorm:"type:uuid;primaryKey" db:"id" json:"path_id"`
	UserID               UserID           `gorm:"type:uuid;not null;index:ix_learning_paths_user_id" db:"user_id" json:"user_id"`
	Name                 string           `gorm:"type:text;not null" db:"name" json:"name"`
	Description          string           `gorm:"type:text" db:"description" json:"description"`
	Status               PathStatus       `gorm:"type:text;not null" db:"status" json:"status"`
	ProgressPercentage   float64          `gorm:"not null" db:"progress_percentage" json:"progress_percentage"`
	TargetHoursPerWeek   *int             `db:"target_hours_per_week" json:"target_hours_per_week,omitempty"`
	TargetCompletionDate *time.Time       `db:"target_completion_date" json:"target_completion_date,omitempty"`
	Priority             int              `gorm:"not null" db:"priority" json:"priority"`
	IsPublic             bool             `gorm:"not null" db:"is_public" json:"is_public"`
	CreatedAt            time.Time        `gorm:"not null" db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"not null" db:"updated_at" json:"updated_at"`
	CompletedAt          *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	Courses              []CourseProgress `gorm:"foreignKey:PathID;constraint:OnDelete:CASCADE" json:"courses"`
}

func (LearningPath) TableName() string { return "user_learning_paths" }

type CourseProgress struct {
	ID                    ProgressID   `gorm:"type:uuid;primaryKey" db:"id" json:"progress_id"`
	PathID                PathID       `gorm:"type:uuid;not null;uniqueIndex:ux_course_progress_path_course" db:"path_id" json:"path_id"`
	UserID                UserID       `gorm:"type:uuid;not null;index:ix_course_progress_user_id" db:"user_id" json:"-"`
	CourseID              string       `gorm:"type:text;not null;uniqueIndex:ux_course_progress_path_course" db:"course_id" json:"course_id"`
	Status                CourseStatus `gorm:"type:text;not null" db:"status" json:"status"`
	ProgressPercentage    float64      `gorm:"not null" db:"progress_percentage" json:"progress_percentage"`
	TimeInvestedMinutes   int          `gorm:"not null" db:"time_invested_minutes" json:"time_invested_minutes"`
	UserRating            *int         `db:"user_rating" json:"user_rating,omitempty"`
	PersonalNotes         *string      `gorm:"type:text" db:"personal_notes" json:"personal_notes,omitempty"`
	SequenceOrder         int          `gorm:"not null" db:"sequence_order" json:"sequence_order"`
	DependenciesCompleted bool         `gorm:"not null" db:"dependencies_completed" json:"dependencies_completed"`
	StartedAt             *time.Time   `db:"started_at" json:"started_at,omitempty"`
	CompletedAt           *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
	LastActivity          *time.Time   `db:"last_activity" json:"last_activity,omitempty"`
	CreatedAt             time.Time    `gorm:"not null" db:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `gorm:"not null" db:"updated_at" json:"updated_at"`
}

func (CourseProgress) TableName() string { return "course_progress" }

// CourseProgressUpdate carries a partial update; nil fields keep the stored value.
type CourseProgressUpdate struct {
	Status              *CourseStatus
	ProgressPercentage  *float64
	TimeInvestedMinutes *int
	UserRating          *int
	PersonalNotes       *string
}

// Apply normalizes u and applies it to c. A missing status means in_progress;
// a missing percentage is derived from the status.
func (c *CourseProgress) Apply(u CourseProgressUpdate, now time.Time) {
	status := CourseInProgress
	if u.Status != nil {
		status = *u.Status
	}
	pct := 0.0
	switch {
	case u.ProgressPercentage != nil:
		pct = *u.ProgressPercentage
	case status == CourseCompleted:
		pct = 100
	}

	c.Status = status
	c.ProgressPercentage = pct
	if u.TimeInvestedMinutes != nil {
		c.TimeInvestedMinutes = *u.TimeInvestedMinutes
	}
	if u.UserRating != nil {
		c.UserRating = u.UserRating
	}
	if u.PersonalNotes != nil {
		c.PersonalNotes = u.PersonalNotes
	}

	switch status {
	case CourseCompleted:
		c.DependenciesCompleted = true
		if c.StartedAt == nil {
			c.StartedAt = &now
		}
		c.CompletedAt = &now
	case CourseInProgress:
		if c.StartedAt == nil {
			c.StartedAt = &now
		}
		c.CompletedAt = nil
	case CourseNotStarted:
		c.StartedAt = nil
		c.CompletedAt = nil
	}
	c.LastActivity = &now
	c.UpdatedAt = now
}

// Recompute derives the path aggregate from its courses: the mean course
// percentage, and completed once every course is completed or skipped.
func (p *LearningPath) Recompute(courses []CourseProgress, now time.Time) {
	total := 0.0
	done := len(courses) > 0
	for _, c := range courses {
		total += c.ProgressPercentage
		if !c.Status.finished() {
			done = false
		}
	}
	if len(courses) > 0 {
		p.ProgressPercentage = total / float64(len(courses))
	} else {
		p.ProgressPercentage = 0
	}
	if done {
		p.Status = PathCompleted
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	} else {
		p.Status = PathActive
		p.CompletedAt = nil
	}
	p.UpdatedAt = now
}

const (
	LevelNoData     = "Sin datos"
	LevelInProgress = "En progreso"
	LevelCompleted  = "Completado"
)

type ProgressSummary struct {
	CompletedCourses int    `json:"completedCourses"`
	TotalCourses     int    `json:"totalCourses"`
	TotalHours       int    `json:"totalHours"`
	Level            string `json:"level"`
}

// SummarizeProgress folds a user's courses into a summary. latest is the
// status of the most recently updated path, or "" when the user has none.
func SummarizeProgress(courses []CourseProgress, latest PathStatus) ProgressSummary {
	var s ProgressSummary
	minutes := 0
	for _, c := range courses {
		s.TotalCourses++
		if c.Status.finished() {
			s.CompletedCourses++
		}
		minutes += c.TimeInvestedMinutes
	}
	s.TotalHours = int(math.Round(float64(minutes) / 60))
	switch {
	case latest == PathCompleted:
		s.Level = LevelCompleted
	case s.TotalCourses > 0:
		s.Level = LevelInProgress
	default:
		s.Level = LevelNoData
	}
	return s
}
