package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/identity"
)

var (
	// errors
	ErrCourseNotFound = core.NewNotFoundError("course not found")
	ErrLessonNotFound = core.NewNotFoundError("lesson not found")
	ErrSlugExists     = errors.New("a course with this slug already exists")
)

type (
	Repository interface {
		CheckSlugUniqueness(ctx context.Context, slug string, exec ...core.DBExecutor) error
		CreateCourse(ctx context.Context, course Course, exec ...core.DBExecutor) error
		QueryCourses(ctx context.Context, publishedOnly bool, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Course, error)
		GetLessonCourse(ctx context.Context, lessonID string, exec ...core.DBExecutor) (Course, error)
		QueryModules(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]Module, error)
		GetLesson(ctx context.Context, id string, exec ...core.DBExecutor) (Lesson, error)
		QueryQuestions(ctx context.Context, lessonID string, exec ...core.DBExecutor) ([]Question, error)
		SetPublished(ctx context.Context, courseID string, published bool, updatedAt time.Time, exec ...core.DBExecutor) error
	}

	Service struct {
		db       core.DB
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(db core.DB, repo Repository, validate *validator.Validate) *Service {
	return &Service{db: db, repo: repo, validate: validate}
}

func (svc *Service) ListCourses(ctx context.Context, publishedOnly bool) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, publishedOnly)
}

func (svc *Service) withModules(ctx context.Context, course Course) (Course, error) {
	mods, err := svc.repo.QueryModules(ctx, course.ID)
	if err != nil {
		return Course{}, err
	}
	course.Modules = mods
	return course, nil
}

// GetCourse returns the course with its modules and lessons.
func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	course, err := svc.repo.GetCourse(ctx, GetFilter{ID: id})
	if err != nil {
		return Course{}, err
	}
	return svc.withModules(ctx, course)
}

// GetCourseBySlug returns the course with its modules and lessons.
func (svc *Service) GetCourseBySlug(ctx context.Context, slug string) (Course, error) {
	course, err := svc.repo.GetCourse(ctx, GetFilter{Slug: core.CleanString(slug, true /* lower */)})
	if err != nil {
		return Course{}, err
	}
	return svc.withModules(ctx, course)
}

// GetLessonsForCourse returns the lessons of a course in module order, then lesson order.
func (svc *Service) GetLessonsForCourse(ctx context.Context, courseID string) ([]Lesson, error) {
	course, err := svc.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return course.Lessons(), nil
}

// GetLessonOwningCourse returns the course a lesson belongs to, without its modules.
func (svc *Service) GetLessonOwningCourse(ctx context.Context, lessonID string) (Course, error) {
	return svc.repo.GetLessonCourse(ctx, lessonID)
}

func (svc *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLesson(ctx, id)
}

// GetQuestions returns the questions of a lesson with their options, in order.
func (svc *Service) GetQuestions(ctx context.Context, lessonID string) ([]Question, error) {
	return svc.repo.QueryQuestions(ctx, lessonID)
}

// CreateCourse creates a course and its whole content tree in one transaction.
func (svc *Service) CreateCourse(ctx context.Context, actor *identity.Actor, nc NewCourse) (Course, error) {
	if _, err := identity.RequireAdmin(actor); err != nil {
		return Course{}, err
	}
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	if err := svc.repo.CheckSlugUniqueness(ctx, nc.Slug); err != nil {
		if err == ErrSlugExists {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "slug", Error: err.Error()})
		}
		return Course{}, err
	}

	course := buildCourse(nc, time.Now().UTC())
	err := core.InTx(ctx, svc.db, func(tx core.DBExecutor) error {
		return svc.repo.CreateCourse(ctx, course, tx)
	})
	if err != nil {
		return Course{}, err
	}
	return course, nil
}

func (svc *Service) SetPublished(ctx context.Context, actor *identity.Actor, courseID string, published bool) (Course, error) {
	if _, err := identity.RequireAdmin(actor); err != nil {
		return Course{}, err
	}
	if err := svc.repo.SetPublished(ctx, courseID, published, time.Now().UTC()); err != nil {
		return Course{}, err
	}
	return svc.GetCourse(ctx, courseID)
}

func buildCourse(nc NewCourse, now time.Time) Course {
	course := Course{
		ID:          uuid.New().String(),
		Slug:        nc.Slug,
		Title:       nc.Title,
		Description: nc.Description,
		PriceCents:  nc.PriceCents,
		Currency:    nc.Currency,
		IsPublished: nc.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
		Modules:     make([]Module, 0, len(nc.Modules)),
	}
	for i, nm := range nc.Modules {
		mod := Module{
			ID:       uuid.New().String(),
			CourseID: course.ID,
			Position: i + 1,
			Title:    core.CleanString(nm.Title),
			Lessons:  make([]Lesson, 0, len(nm.Lessons)),
		}
		for j, nl := range nm.Lessons {
			lsn := Lesson{
				ID:              uuid.New().String(),
				ModuleID:        mod.ID,
				Position:        j + 1,
				Title:           core.CleanString(nl.Title),
				Type:            nl.Type,
				ContentURL:      nl.ContentURL,
				Body:            nl.Body,
				DurationSeconds: nl.DurationSeconds,
			}
			for k, nq := range nl.Questions {
				qst := Question{
					ID:       uuid.New().String(),
					LessonID: lsn.ID,
					Position: k + 1,
					Prompt:   core.CleanString(nq.Prompt),
				}
				for m, no := range nq.Options {
					qst.Options = append(qst.Options, Option{
						ID:         uuid.New().String(),
						QuestionID: qst.ID,
						Position:   m + 1,
						Label:      core.CleanString(no.Label),
						IsCorrect:  no.IsCorrect,
					})
				}
				lsn.Questions = append(lsn.Questions, qst)
			}
			mod.Lessons = append(mod.Lessons, lsn)
		}
		course.Modules = append(course.Modules, mod)
	}
	return course
}
