package quiz

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/identity"
	"github.com/trezcool/darasa/core/progress"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("quiz response not found")
)

type (
	Repository interface {
		UpsertResponse(ctx context.Context, resp Response, exec ...core.DBExecutor) error
		GetResponse(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) (Response, error)
		DeleteResponse(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) error
	}

	CatalogReader interface {
		GetLesson(ctx context.Context, id string) (catalog.Lesson, error)
		GetLessonOwningCourse(ctx context.Context, lessonID string) (catalog.Course, error)
		GetQuestions(ctx context.Context, lessonID string) ([]catalog.Question, error)
	}

	EnrollmentGetter interface {
		GetEnrollment(ctx context.Context, userID, courseID string, exec ...core.DBExecutor) (enrollment.Enrollment, error)
	}

	ProgressRecorder interface {
		RecordInTx(ctx context.Context, exec core.DBExecutor, actor *identity.Actor, lessonID string, percent int, completed bool) (progress.Completion, error)
		NotifyCompletion(act identity.Actor, cpl progress.Completion)
	}

	Service struct {
		db          core.DB
		repo        Repository
		catalog     CatalogReader
		enrollments EnrollmentGetter
		progress    ProgressRecorder
		passMark    int
	}
)

func NewService(
	db core.DB,
	repo Repository,
	catalog CatalogReader,
	enrollments EnrollmentGetter,
	progress ProgressRecorder,
	passMark int,
) *Service {
	return &Service{
		db:          db,
		repo:        repo,
		catalog:     catalog,
		enrollments: enrollments,
		progress:    progress,
		passMark:    passMark,
	}
}

// quizLesson returns the quiz lesson with its questions, if the actor is enrolled in its course.
func (svc *Service) quizLesson(ctx context.Context, act identity.Actor, lessonID string) (catalog.Lesson, error) {
	lsn, err := svc.catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return catalog.Lesson{}, err
	}
	if !lsn.IsQuiz() {
		return catalog.Lesson{}, core.NewInvalidStateError("lesson %q is not a quiz", lsn.Title)
	}

	course, err := svc.catalog.GetLessonOwningCourse(ctx, lessonID)
	if err != nil {
		return catalog.Lesson{}, err
	}
	if _, err = svc.enrollments.GetEnrollment(ctx, act.ID, course.ID); err != nil {
		if core.IsNotFound(err) {
			return catalog.Lesson{}, core.NewAuthorizationError("not enrolled in course %q", course.Slug)
		}
		return catalog.Lesson{}, err
	}

	if lsn.Questions, err = svc.catalog.GetQuestions(ctx, lessonID); err != nil {
		return catalog.Lesson{}, err
	}
	return lsn, nil
}

// GetQuiz returns a quiz lesson's questions without revealing the correct options.
func (svc *Service) GetQuiz(ctx context.Context, actor *identity.Actor, lessonID string) (Quiz, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return Quiz{}, err
	}
	lsn, err := svc.quizLesson(ctx, act, lessonID)
	if err != nil {
		return Quiz{}, err
	}

	qz := Quiz{LessonID: lsn.ID, Title: lsn.Title, Questions: make([]QuizQuestion, 0, len(lsn.Questions))}
	for _, qst := range lsn.Questions {
		qq := QuizQuestion{ID: qst.ID, Prompt: qst.Prompt, Options: make([]QuizOption, 0, len(qst.Options))}
		for _, opt := range qst.Options {
			qq.Options = append(qq.Options, QuizOption{ID: opt.ID, Label: opt.Label})
		}
		qz.Questions = append(qz.Questions, qq)
	}
	return qz, nil
}

// SubmitQuiz grades the actor's answers, stores them and completes the lesson, atomically.
// Every question must be answered; re-submitting replaces the previous response.
func (svc *Service) SubmitQuiz(
	ctx context.Context,
	actor *identity.Actor,
	lessonID string,
	answers map[string]string,
) (Result, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return Result{}, err
	}
	lsn, err := svc.quizLesson(ctx, act, lessonID)
	if err != nil {
		return Result{}, err
	}

	score, err := grade(lsn.Questions, answers)
	if err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	resp := Response{
		ID:        uuid.New().String(),
		UserID:    act.ID,
		LessonID:  lsn.ID,
		Answers:   answers,
		Score:     score,
		Completed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = resp.encodeAnswers(); err != nil {
		return Result{}, err
	}

	var cpl progress.Completion
	err = core.InTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.repo.UpsertResponse(ctx, resp, tx); err != nil {
			return errors.Wrap(err, "saving quiz response")
		}
		cpl, err = svc.progress.RecordInTx(ctx, tx, &act, lsn.ID, 100, true)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	svc.progress.NotifyCompletion(act, cpl)

	return Result{Score: score, Passed: score >= svc.passMark, PassMark: svc.passMark}, nil
}

// grade returns the rounded percentage of questions answered with their correct option.
// Every question must be answered, and only questions of the quiz.
func grade(questions []catalog.Question, answers map[string]string) (int, error) {
	var (
		fields  []core.FieldError
		correct int
	)
	known := make(map[string]bool, len(questions))
	for _, qst := range questions {
		known[qst.ID] = true
		ans, ok := answers[qst.ID]
		if !ok || ans == "" {
			fields = append(fields, core.FieldError{Field: fmt.Sprintf("answers.%s", qst.ID), Error: "this question must be answered"})
			continue
		}
		if ans == qst.CorrectOption() {
			correct++
		}
	}
	if len(fields) > 0 {
		return 0, core.NewValidationError(errors.New("all questions must be answered"), fields...)
	}

	var unknown []string
	for id := range answers {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		for _, id := range unknown {
			fields = append(fields, core.FieldError{Field: fmt.Sprintf("answers.%s", id), Error: "not a question of this quiz"})
		}
		return 0, core.NewValidationError(errors.New("answers must only be given to questions of the quiz"), fields...)
	}
	return core.Percent(correct, len(questions)), nil
}

// GetQuizResponse returns the actor's stored response to a quiz, nil when there is none.
func (svc *Service) GetQuizResponse(ctx context.Context, actor *identity.Actor, lessonID string) (*Response, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return nil, err
	}
	resp, err := svc.repo.GetResponse(ctx, act.ID, lessonID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err = resp.decodeAnswers(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetakeQuiz discards the actor's response to a quiz. The lesson stays completed.
func (svc *Service) RetakeQuiz(ctx context.Context, actor *identity.Actor, lessonID string) error {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return err
	}
	if _, err = svc.quizLesson(ctx, act, lessonID); err != nil {
		return err
	}
	return svc.repo.DeleteResponse(ctx, act.ID, lessonID)
}
