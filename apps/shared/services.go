// Package shared wires the core services of the apps.
package shared

import (
	"database/sql"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/note"
	"github.com/trezcool/darasa/core/payment"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database/sqlxrepos"
)

type Services struct {
	Validate   *validator.Validate
	Translator ut.Translator

	Users       *user.Service
	Catalog     *catalog.Service
	Enrollments *enrollment.Service
	Progress    *progress.Service
	Quizzes     *quiz.Service
	Notes       *note.Service
	Payments    *payment.Service
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	return validate, translator
}

// NewServices builds the core services on db, whose driver is engine.
func NewServices(db *sql.DB, engine string, conf *core.Config, mailSvc core.EmailService, logger core.Logger) *Services {
	validate, translator := NewValidator()

	userRepo := sqlxrepos.NewUserRepository(db, engine)
	catalogRepo := sqlxrepos.NewCatalogRepository(db, engine)
	enrollmentRepo := sqlxrepos.NewEnrollmentRepository(db, engine)
	paymentRepo := sqlxrepos.NewPaymentRepository(db, engine)

	usrSvc := user.NewService(userRepo)
	catalogSvc := catalog.NewService(db, catalogRepo, validate)
	enrollmentSvc := enrollment.NewService(
		db, enrollmentRepo, catalogSvc, payment.NewChecker(paymentRepo), mailSvc, logger,
	)
	progressSvc := progress.NewService(
		db, sqlxrepos.NewProgressRepository(db, engine), catalogRepo, enrollmentRepo, mailSvc,
	)

	return &Services{
		Validate:    validate,
		Translator:  translator,
		Users:       usrSvc,
		Catalog:     catalogSvc,
		Enrollments: enrollmentSvc,
		Progress:    progressSvc,
		Quizzes: quiz.NewService(
			db, sqlxrepos.NewQuizRepository(db, engine), catalogSvc, enrollmentRepo, progressSvc, conf.Quiz.PassMark,
		),
		Notes:    note.NewService(sqlxrepos.NewNoteRepository(db, engine), catalogSvc),
		Payments: payment.NewService(paymentRepo, catalogSvc, usrSvc, enrollmentSvc, validate, logger),
	}
}
