// Package testutil provides the database, services and fixtures used by the tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/trezcool/darasa/apps/shared"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/identity"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
)

const (
	Password      = "Sup3r-Secret!"
	WebhookSecret = "whsec_test"
)

// Env is a migrated SQLite database with the services built on it.
type Env struct {
	*shared.Services

	Conf   *core.Config
	DB     *sql.DB
	Mail   *emailsvc.MockService
	Logger core.Logger
}

func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("TEST_PAYMENT_WEBHOOKSECRET", WebhookSecret)
	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	return conf
}

var quietMigrations sync.Once

// PrepareDB returns a migrated SQLite database, removed at the end of the test.
func PrepareDB(t *testing.T) *sql.DB {
	t.Helper()
	quietMigrations.Do(func() { database.SetMigrationLogger(logsvc.NewNopLogger()) })
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, database.EngineSQLite); err != nil {
		t.Fatalf("migrating database: %v", err)
	}
	return db
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	conf := NewConfig(t)
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(conf, logger)

	db := PrepareDB(t)
	mailSvc := emailsvc.NewMockService(conf)
	return &Env{
		Services: shared.NewServices(db, database.EngineSQLite, conf, mailSvc, logger),
		Conf:     conf,
		DB:       db,
		Mail:     mailSvc,
		Logger:   logger,
	}
}

// Admin is an administrator identity; it is not persisted.
func Admin() *identity.Actor {
	return &identity.Actor{ID: "00000000-0000-0000-0000-000000000001", Name: "Admin", Role: identity.RoleAdmin}
}

func (env *Env) CreateUser(t *testing.T, name, email string, role ...identity.Role) user.User {
	t.Helper()
	nu := user.NewUser{
		Name:            name,
		Email:           email,
		Role:            identity.RoleLearner,
		Password:        Password,
		PasswordConfirm: Password,
	}
	if len(role) > 0 {
		nu.Role = role[0]
	}
	usr, err := env.Users.Create(context.Background(), nu)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateLearner creates a learner and returns their identity.
func (env *Env) CreateLearner(t *testing.T, name, email string) *identity.Actor {
	t.Helper()
	act := env.CreateUser(t, name, email).Actor()
	return &act
}

func (env *Env) CreateCourse(t *testing.T, nc catalog.NewCourse) catalog.Course {
	t.Helper()
	course, err := env.Catalog.CreateCourse(context.Background(), Admin(), nc)
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return course
}

// SampleCourse is a published course of 2 modules: a video and a document lesson, then a quiz
// of 2 questions and a video lesson.
func SampleCourse(slug string, priceCents int64) catalog.NewCourse {
	return catalog.NewCourse{
		Slug:        slug,
		Title:       "Go for Data Plumbing",
		Description: "Pipes, queues and tables.",
		PriceCents:  priceCents,
		Currency:    "USD",
		IsPublished: true,
		Modules: []catalog.NewModule{
			{
				Title: "Basics",
				Lessons: []catalog.NewLesson{
					{Title: "Welcome", Type: catalog.LessonVideo, ContentURL: "https://cdn.example.com/welcome.mp4", DurationSeconds: 120},
					{Title: "Syllabus", Type: catalog.LessonDocument, Body: "Read me first."},
				},
			},
			{
				Title: "Channels",
				Lessons: []catalog.NewLesson{
					{
						Title: "Check your knowledge",
						Type:  catalog.LessonQuiz,
						Questions: []catalog.NewQuestion{
							{
								Prompt: "Which keyword starts a goroutine?",
								Options: []catalog.NewOption{
									{Label: "go", IsCorrect: true},
									{Label: "async"},
									{Label: "spawn"},
								},
							},
							{
								Prompt: "Sending on a closed channel...",
								Options: []catalog.NewOption{
									{Label: "blocks forever"},
									{Label: "panics", IsCorrect: true},
								},
							},
						},
					},
					{Title: "Select", Type: catalog.LessonVideo, ContentURL: "https://cdn.example.com/select.mp4", DurationSeconds: 300},
				},
			},
		},
	}
}

// LessonOfType returns the first lesson of the given type of a course.
func LessonOfType(t *testing.T, course catalog.Course, typ catalog.LessonType) catalog.Lesson {
	t.Helper()
	for _, lsn := range course.Lessons() {
		if lsn.Type == typ {
			return lsn
		}
	}
	t.Fatalf("course %q has no %s lesson", course.Slug, typ)
	return catalog.Lesson{}
}

// Answers answers a quiz lesson: the first nCorrect questions correctly, the others wrongly.
func Answers(lsn catalog.Lesson, nCorrect int) map[string]string {
	answers := make(map[string]string, len(lsn.Questions))
	for i, qst := range lsn.Questions {
		for _, opt := range qst.Options {
			if opt.IsCorrect == (i < nCorrect) {
				answers[qst.ID] = opt.ID
				break
			}
		}
	}
	return answers
}
