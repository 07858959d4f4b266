package enrollment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

type Enrollment struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	CourseID    string    `json:"course_id" db:"course_id"`
	EnrolledAt  time.Time `json:"enrolled_at" db:"enrolled_at"`   // UTC
	CompletedAt null.Time `json:"completed_at" db:"completed_at"` // UTC, set once all lessons are completed
}

func (e Enrollment) IsCompleted() bool {
	return e.CompletedAt.Valid
}

// Summary is an enrollment listed with its course and lesson counts.
type Summary struct {
	Enrollment
	CourseSlug       string `json:"course_slug" db:"course_slug"`
	CourseTitle      string `json:"course_title" db:"course_title"`
	UserName         string `json:"user_name,omitempty" db:"user_name"`
	UserEmail        string `json:"user_email,omitempty" db:"user_email"`
	TotalLessons     int    `json:"total_lessons" db:"total_lessons"`
	CompletedLessons int    `json:"completed_lessons" db:"completed_lessons"`
}

func (s Summary) Percent() int {
	return core.Percent(s.CompletedLessons, s.TotalLessons)
}
