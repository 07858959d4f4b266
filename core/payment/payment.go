package payment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/identity"
	"github.com/trezcool/darasa/core/user"
)

const (
	EventSucceeded = "payment.succeeded"

	StatusSucceeded = "succeeded"
)

type Payment struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	CourseID    string    `json:"course_id" db:"course_id"`
	ProviderRef string    `json:"provider_ref" db:"provider_ref"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

// Event is a payment provider notification.
type Event struct {
	ID          string `json:"id" validate:"required"`
	Type        string `json:"type" validate:"required"`
	UserID      string `json:"user_id" validate:"required_if=Type payment.succeeded"`
	CourseID    string `json:"course_id" validate:"required_if=Type payment.succeeded"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
	Currency    string `json:"currency"`
}

type (
	Repository interface {
		// CreatePayment records p unless a payment with the same provider reference exists.
		CreatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (created bool, err error)
		HasSucceededPayment(ctx context.Context, userID, courseID string, exec ...core.DBExecutor) (bool, error)
	}

	CourseGetter interface {
		GetCourse(ctx context.Context, id string) (catalog.Course, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Enroller interface {
		Enroll(ctx context.Context, actor *identity.Actor, courseID string) (enrollment.Enrollment, error)
	}

	// Checker tells whether a user paid for a course.
	Checker struct {
		repo Repository
	}

	Service struct {
		repo     Repository
		courses  CourseGetter
		users    UserGetter
		enroller Enroller
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewChecker(repo Repository) *Checker {
	return &Checker{repo: repo}
}

func (c *Checker) HasSucceededPayment(ctx context.Context, userID, courseID string) (bool, error) {
	return c.repo.HasSucceededPayment(ctx, userID, courseID)
}

func NewService(
	repo Repository,
	courses CourseGetter,
	users UserGetter,
	enroller Enroller,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		courses:  courses,
		users:    users,
		enroller: enroller,
		validate: validate,
		logger:   logger,
	}
}

// HandleEvent processes a provider notification. Only succeeded payments are acted upon:
// the payment is recorded once per provider reference, then the paying user is enrolled.
// Redelivered events are safe: both steps are idempotent.
func (svc *Service) HandleEvent(ctx context.Context, evt Event) (*enrollment.Enrollment, error) {
	if err := svc.validate.Struct(evt); err != nil {
		return nil, err
	}
	if evt.Type != EventSucceeded {
		svc.logger.Info("ignoring payment event", map[string]interface{}{"id": evt.ID, "type": evt.Type})
		return nil, nil
	}
	enr, err := svc.HandleSucceeded(ctx, evt)
	if err != nil {
		return nil, err
	}
	return &enr, nil
}

func (svc *Service) HandleSucceeded(ctx context.Context, evt Event) (enrollment.Enrollment, error) {
	usr, err := svc.users.GetByID(ctx, evt.UserID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	course, err := svc.courses.GetCourse(ctx, evt.CourseID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}

	created, err := svc.repo.CreatePayment(ctx, Payment{
		ID:          uuid.New().String(),
		UserID:      usr.ID,
		CourseID:    course.ID,
		ProviderRef: evt.ID,
		AmountCents: evt.AmountCents,
		Currency:    evt.Currency,
		Status:      StatusSucceeded,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "recording payment")
	}
	if !created {
		svc.logger.Info("payment already recorded", map[string]interface{}{"id": evt.ID})
	}

	actor := usr.Actor()
	return svc.enroller.Enroll(ctx, &actor, course.ID)
}
