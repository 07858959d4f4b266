package progress

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
)

type Progress struct {
	ID           string    `json:"id" db:"id"`
	EnrollmentID string    `json:"enrollment_id" db:"enrollment_id"`
	LessonID     string    `json:"lesson_id" db:"lesson_id"`
	Completed    bool      `json:"completed" db:"completed"`
	Progress     int       `json:"progress" db:"progress"`
	LastAccessed null.Time `json:"last_accessed" db:"last_accessed"` // UTC
}

// Completion is the outcome of recording lesson progress.
type Completion struct {
	Progress   Progress
	Course     catalog.Course
	Enrollment enrollment.Enrollment
	// CourseCompleted is true only when this record completed the course.
	CourseCompleted bool
}

// CourseProgress is the actor's progress over a course, lesson by lesson.
type CourseProgress struct {
	CourseID         string     `json:"course_id"`
	EnrollmentID     string     `json:"enrollment_id"`
	Percent          int        `json:"percent"`
	TotalLessons     int        `json:"total_lessons"`
	CompletedLessons int        `json:"completed_lessons"`
	Completed        bool       `json:"completed"`
	Lessons          []Progress `json:"lessons"`
}
