package enrollment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/identity"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("enrollment not found")
)

type (
	Repository interface {
		// CreateEnrollment inserts enr unless the (user, course) pair is already enrolled.
		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (created bool, err error)
		GetEnrollment(ctx context.Context, userID, courseID string, exec ...core.DBExecutor) (Enrollment, error)
		QueryEnrollments(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Summary, error)
		QueryCourseEnrollments(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]Summary, error)
		// SeedProgress creates an empty progress record per lesson, preserving their order.
		SeedProgress(ctx context.Context, enrollmentID string, lessonIDs []string, exec ...core.DBExecutor) error
	}

	CourseGetter interface {
		GetCourse(ctx context.Context, id string) (catalog.Course, error)
	}

	PaymentChecker interface {
		HasSucceededPayment(ctx context.Context, userID, courseID string) (bool, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		courses  CourseGetter
		payments PaymentChecker
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(
	db core.DB,
	repo Repository,
	courses CourseGetter,
	payments PaymentChecker,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		courses:  courses,
		payments: payments,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Enroll enrolls the actor in a course. Enrolling twice returns the existing enrollment unchanged.
// A new enrollment and its progress records are created atomically.
func (svc *Service) Enroll(ctx context.Context, actor *identity.Actor, courseID string) (Enrollment, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return Enrollment{}, err
	}

	course, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	// drafts are only visible to admins
	if !course.IsPublished && !act.IsAdmin() {
		return Enrollment{}, catalog.ErrCourseNotFound
	}

	if enr, err := svc.repo.GetEnrollment(ctx, act.ID, course.ID); err == nil {
		return enr, nil
	} else if !core.IsNotFound(err) {
		return Enrollment{}, err
	}

	if !course.IsFree() {
		paid, err := svc.payments.HasSucceededPayment(ctx, act.ID, course.ID)
		if err != nil {
			return Enrollment{}, errors.Wrap(err, "checking payment")
		}
		if !paid {
			return Enrollment{}, core.NewPaymentRequiredError("payment required for course %q", course.Slug)
		}
	}

	lessons := course.Lessons()
	lessonIDs := make([]string, 0, len(lessons))
	for _, lsn := range lessons {
		lessonIDs = append(lessonIDs, lsn.ID)
	}

	var (
		enr     Enrollment
		created bool
	)
	now := time.Now().UTC()
	err = core.InTx(ctx, svc.db, func(tx core.DBExecutor) error {
		created, err = svc.repo.CreateEnrollment(ctx, Enrollment{
			ID:         uuid.New().String(),
			UserID:     act.ID,
			CourseID:   course.ID,
			EnrolledAt: now,
		}, tx)
		if err != nil {
			return err
		}
		if enr, err = svc.repo.GetEnrollment(ctx, act.ID, course.ID, tx); err != nil {
			return err
		}
		if !created {
			return nil
		}
		return svc.repo.SeedProgress(ctx, enr.ID, lessonIDs, tx)
	})
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "enrolling")
	}

	if created {
		svc.logger.Info("learner enrolled", map[string]interface{}{"course": course.Slug, "enrollment": enr.ID}, act)
		svc.sendConfirmation(act, course)
	}
	return enr, nil
}

func (svc *Service) sendConfirmation(act identity.Actor, course catalog.Course) {
	if svc.mailSvc == nil || act.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: act.Name, Address: act.Email}},
		Subject:      fmt.Sprintf("You are enrolled in %s", course.Title),
		TemplateName: "enrollment_confirmed",
		TemplateData: map[string]interface{}{
			"Name":        act.Name,
			"CourseTitle": course.Title,
			"CourseSlug":  course.Slug,
		},
	})
}

// GetEnrollment returns the actor's enrollment in a course, nil when not enrolled.
func (svc *Service) GetEnrollment(ctx context.Context, actor *identity.Actor, courseID string) (*Enrollment, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return nil, err
	}
	enr, err := svc.repo.GetEnrollment(ctx, act.ID, courseID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &enr, nil
}

// ListEnrollments lists the actor's enrollments, most recent first.
func (svc *Service) ListEnrollments(ctx context.Context, actor *identity.Actor) ([]Summary, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrollments(ctx, act.ID)
}

func (svc *Service) ListCourseEnrollments(ctx context.Context, actor *identity.Actor, courseID string) ([]Summary, error) {
	if _, err := identity.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := svc.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourseEnrollments(ctx, courseID)
}
