package progress

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/identity"
)

type (
	Repository interface {
		// UpsertProgress records progress on a lesson. A completed lesson stays completed at 100%.
		UpsertProgress(ctx context.Context, prg Progress, exec ...core.DBExecutor) (Progress, error)
		CountLessons(ctx context.Context, courseID string, exec ...core.DBExecutor) (int, error)
		CountCompleted(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) (int, error)
		// MarkCompleted stamps the enrollment's completion time unless already set.
		MarkCompleted(ctx context.Context, enrollmentID string, at time.Time, exec ...core.DBExecutor) (bool, error)
		QueryProgress(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]Progress, error)
	}

	LessonCourseGetter interface {
		GetLessonCourse(ctx context.Context, lessonID string, exec ...core.DBExecutor) (catalog.Course, error)
	}

	EnrollmentGetter interface {
		GetEnrollment(ctx context.Context, userID, courseID string, exec ...core.DBExecutor) (enrollment.Enrollment, error)
	}

	Service struct {
		db          core.DB
		repo        Repository
		courses     LessonCourseGetter
		enrollments EnrollmentGetter
		mailSvc     core.EmailService
	}
)

func NewService(
	db core.DB,
	repo Repository,
	courses LessonCourseGetter,
	enrollments EnrollmentGetter,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		db:          db,
		repo:        repo,
		courses:     courses,
		enrollments: enrollments,
		mailSvc:     mailSvc,
	}
}

func validatePercent(percent int) error {
	if percent < 0 || percent > 100 {
		return core.NewValidationError(nil, core.FieldError{Field: "percent", Error: "must be between 0 and 100"})
	}
	return nil
}

// UpdateLessonProgress records the actor's progress on a lesson and completes the course
// enrollment once every lesson is completed.
func (svc *Service) UpdateLessonProgress(
	ctx context.Context,
	actor *identity.Actor,
	lessonID string,
	percent int,
	completed bool,
) (Progress, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return Progress{}, err
	}
	if err = validatePercent(percent); err != nil {
		return Progress{}, err
	}

	var cpl Completion
	err = core.InTx(ctx, svc.db, func(tx core.DBExecutor) error {
		cpl, err = svc.RecordInTx(ctx, tx, &act, lessonID, percent, completed)
		return err
	})
	if err != nil {
		return Progress{}, err
	}
	svc.NotifyCompletion(act, cpl)
	return cpl.Progress, nil
}

// RecordInTx records lesson progress using exec, which the caller commits.
// Emails are not sent: call NotifyCompletion once exec is committed.
func (svc *Service) RecordInTx(
	ctx context.Context,
	exec core.DBExecutor,
	actor *identity.Actor,
	lessonID string,
	percent int,
	completed bool,
) (Completion, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return Completion{}, err
	}
	if err = validatePercent(percent); err != nil {
		return Completion{}, err
	}

	course, err := svc.courses.GetLessonCourse(ctx, lessonID, exec)
	if err != nil {
		return Completion{}, err
	}
	enr, err := svc.enrollments.GetEnrollment(ctx, act.ID, course.ID, exec)
	if err != nil {
		if core.IsNotFound(err) {
			return Completion{}, core.NewAuthorizationError("not enrolled in course %q", course.Slug)
		}
		return Completion{}, err
	}

	if completed {
		percent = 100
	}
	now := time.Now().UTC()
	prg, err := svc.repo.UpsertProgress(ctx, Progress{
		ID:           uuid.New().String(),
		EnrollmentID: enr.ID,
		LessonID:     lessonID,
		Completed:    completed,
		Progress:     percent,
		LastAccessed: null.TimeFrom(now),
	}, exec)
	if err != nil {
		return Completion{}, errors.Wrap(err, "recording progress")
	}

	cpl := Completion{Progress: prg, Course: course, Enrollment: enr}
	if enr.IsCompleted() {
		return cpl, nil
	}

	total, err := svc.repo.CountLessons(ctx, course.ID, exec)
	if err != nil {
		return Completion{}, errors.Wrap(err, "counting lessons")
	}
	done, err := svc.repo.CountCompleted(ctx, enr.ID, exec)
	if err != nil {
		return Completion{}, errors.Wrap(err, "counting completed lessons")
	}
	if total > 0 && done >= total {
		if cpl.CourseCompleted, err = svc.repo.MarkCompleted(ctx, enr.ID, now, exec); err != nil {
			return Completion{}, errors.Wrap(err, "completing enrollment")
		}
		if cpl.CourseCompleted {
			cpl.Enrollment.CompletedAt.SetValid(now)
		}
	}
	return cpl, nil
}

// NotifyCompletion emails the actor when cpl completed a course.
func (svc *Service) NotifyCompletion(act identity.Actor, cpl Completion) {
	if !cpl.CourseCompleted || svc.mailSvc == nil || act.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: act.Name, Address: act.Email}},
		Subject:      fmt.Sprintf("Congratulations on completing %s", cpl.Course.Title),
		TemplateName: "course_completed",
		TemplateData: map[string]interface{}{
			"Name":        act.Name,
			"CourseTitle": cpl.Course.Title,
			"CourseSlug":  cpl.Course.Slug,
		},
	})
}

// GetOverallProgress returns the rounded percentage of the course's lessons the actor completed.
func (svc *Service) GetOverallProgress(ctx context.Context, actor *identity.Actor, courseID string) (int, error) {
	cp, err := svc.GetCourseProgress(ctx, actor, courseID)
	if err != nil {
		return 0, err
	}
	return cp.Percent, nil
}

// GetCourseProgress returns the actor's per lesson progress on a course they are enrolled in.
func (svc *Service) GetCourseProgress(ctx context.Context, actor *identity.Actor, courseID string) (CourseProgress, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return CourseProgress{}, err
	}
	enr, err := svc.enrollments.GetEnrollment(ctx, act.ID, courseID)
	if err != nil {
		if core.IsNotFound(err) {
			return CourseProgress{}, core.NewAuthorizationError("not enrolled in course")
		}
		return CourseProgress{}, err
	}

	total, err := svc.repo.CountLessons(ctx, courseID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "counting lessons")
	}
	lessons, err := svc.repo.QueryProgress(ctx, enr.ID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "querying progress")
	}
	var done int
	for _, prg := range lessons {
		if prg.Completed {
			done++
		}
	}
	return CourseProgress{
		CourseID:         courseID,
		EnrollmentID:     enr.ID,
		Percent:          core.Percent(done, total),
		TotalLessons:     total,
		CompletedLessons: done,
		Completed:        enr.IsCompleted(),
		Lessons:          lessons,
	}, nil
}
