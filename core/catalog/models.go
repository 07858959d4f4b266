package catalog

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type LessonType string

const (
	LessonVideo    LessonType = "video"
	LessonDocument LessonType = "document"
	LessonQuiz     LessonType = "quiz"
)

type (
	Course struct {
		ID          string    `json:"id" db:"id"`
		Slug        string    `json:"slug" db:"slug"`
		Title       string    `json:"title" db:"title"`
		Description string    `json:"description" db:"description"`
		PriceCents  int64     `json:"price_cents" db:"price_cents"`
		Currency    string    `json:"currency" db:"currency"`
		IsPublished bool      `json:"is_published" db:"is_published"`
		CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
		Modules     []Module  `json:"modules,omitempty" db:"-"`
	}

	Module struct {
		ID       string   `json:"id" db:"id"`
		CourseID string   `json:"course_id" db:"course_id"`
		Position int      `json:"position" db:"position"`
		Title    string   `json:"title" db:"title"`
		Lessons  []Lesson `json:"lessons" db:"-"`
	}

	Lesson struct {
		ID              string     `json:"id" db:"id"`
		ModuleID        string     `json:"module_id" db:"module_id"`
		Position        int        `json:"position" db:"position"`
		Title           string     `json:"title" db:"title"`
		Type            LessonType `json:"type" db:"type"`
		ContentURL      string     `json:"content_url" db:"content_url"`
		Body            string     `json:"body" db:"body"`
		DurationSeconds int        `json:"duration_seconds" db:"duration_seconds"`
		Questions       []Question `json:"questions,omitempty" db:"-"`
	}

	Question struct {
		ID       string   `json:"id" db:"id"`
		LessonID string   `json:"lesson_id" db:"lesson_id"`
		Position int      `json:"position" db:"position"`
		Prompt   string   `json:"prompt" db:"prompt"`
		Options  []Option `json:"options" db:"-"`
	}

	Option struct {
		ID         string `json:"id" db:"id"`
		QuestionID string `json:"question_id" db:"question_id"`
		Position   int    `json:"position" db:"position"`
		Label      string `json:"label" db:"label"`
		IsCorrect  bool   `json:"is_correct" db:"is_correct"`
	}
)

func (c Course) IsFree() bool {
	return c.PriceCents <= 0
}

// TotalLessons is the number of lessons over all modules of a course loaded with its modules.
func (c Course) TotalLessons() int {
	var n int
	for _, mod := range c.Modules {
		n += len(mod.Lessons)
	}
	return n
}

// Lessons flattens the course's lessons in module order, then lesson order.
func (c Course) Lessons() []Lesson {
	lessons := make([]Lesson, 0, c.TotalLessons())
	for _, mod := range c.Modules {
		lessons = append(lessons, mod.Lessons...)
	}
	return lessons
}

func (l Lesson) IsQuiz() bool {
	return l.Type == LessonQuiz
}

// CorrectOption returns the id of the question's correct option.
func (q Question) CorrectOption() string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	return ""
}

type GetFilter struct {
	ID   string
	Slug string
}

// NewCourse contains the information needed to create a course with its whole content tree.
// It is also the document format of course imports.
type NewCourse struct {
	Slug        string      `json:"slug" yaml:"slug" validate:"required,slug"`
	Title       string      `json:"title" yaml:"title" validate:"required,notblank"`
	Description string      `json:"description" yaml:"description"`
	PriceCents  int64       `json:"price_cents" yaml:"price_cents" validate:"gte=0"`
	Currency    string      `json:"currency" yaml:"currency" validate:"omitempty,len=3,uppercase"`
	IsPublished bool        `json:"is_published" yaml:"is_published"`
	Modules     []NewModule `json:"modules" yaml:"modules" validate:"dive"`
}

type NewModule struct {
	Title   string      `json:"title" yaml:"title" validate:"required,notblank"`
	Lessons []NewLesson `json:"lessons" yaml:"lessons" validate:"dive"`
}

type NewLesson struct {
	Title           string        `json:"title" yaml:"title" validate:"required,notblank"`
	Type            LessonType    `json:"type" yaml:"type" validate:"required,oneof=video document quiz"`
	ContentURL      string        `json:"content_url" yaml:"content_url" validate:"omitempty,url"`
	Body            string        `json:"body" yaml:"body"`
	DurationSeconds int           `json:"duration_seconds" yaml:"duration_seconds" validate:"gte=0"`
	Questions       []NewQuestion `json:"questions" yaml:"questions" validate:"dive"`
}

type NewQuestion struct {
	Prompt  string      `json:"prompt" yaml:"prompt" validate:"required,notblank"`
	Options []NewOption `json:"options" yaml:"options" validate:"min=2,dive"`
}

type NewOption struct {
	Label     string `json:"label" yaml:"label" validate:"required,notblank"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

func (nc *NewCourse) clean() {
	nc.Slug = core.CleanString(nc.Slug, true /* lower */)
	nc.Title = core.CleanString(nc.Title)
	nc.Currency = strings.ToUpper(core.CleanString(nc.Currency))
	if nc.Currency == "" {
		nc.Currency = defaultCurrency
	}
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.clean()
	return validate.Struct(nc)
}
