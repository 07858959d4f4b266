package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/identity"
	testutil "github.com/trezcool/darasa/tests"
)

type fixture struct {
	env     *testutil.Env
	course  catalog.Course
	learner *identity.Actor
}

func setUp(t *testing.T) fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	course := env.CreateCourse(t, testutil.SampleCourse("go-plumbing", 0))
	learner := env.CreateLearner(t, "Amani", "amani@example.com")
	_, err := env.Enrollments.Enroll(context.Background(), learner, course.ID)
	require.NoError(t, err)
	env.Mail.Reset()
	return fixture{env: env, course: course, learner: learner}
}

func (f fixture) completedAt(t *testing.T) (bool, string) {
	t.Helper()
	enr, err := f.env.Enrollments.GetEnrollment(context.Background(), f.learner, f.course.ID)
	require.NoError(t, err)
	require.NotNil(t, enr)
	return enr.IsCompleted(), enr.CompletedAt.Time.String()
}

func TestService_UpdateLessonProgress(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	lsn := f.course.Lessons()[0]

	prg, err := f.env.Progress.UpdateLessonProgress(ctx, f.learner, lsn.ID, 40, false)
	require.NoError(t, err)
	assert.Equal(t, 40, prg.Progress)
	assert.False(t, prg.Completed)
	assert.True(t, prg.LastAccessed.Valid)

	prg, err = f.env.Progress.UpdateLessonProgress(ctx, f.learner, lsn.ID, 60, true)
	require.NoError(t, err)
	assert.Equal(t, 100, prg.Progress, "completed lessons are at 100%")
	assert.True(t, prg.Completed)

	// a completed lesson stays completed
	prg, err = f.env.Progress.UpdateLessonProgress(ctx, f.learner, lsn.ID, 10, false)
	require.NoError(t, err)
	assert.True(t, prg.Completed)
	assert.Equal(t, 100, prg.Progress)

	pct, err := f.env.Progress.GetOverallProgress(ctx, f.learner, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, pct)
}

func TestService_UpdateLessonProgress_Errors(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	lsn := f.course.Lessons()[0]
	stranger := f.env.CreateLearner(t, "Baraka", "baraka@example.com")

	tests := []struct {
		name     string
		actor    *identity.Actor
		lessonID string
		percent  int
		check    func(error) bool
	}{
		{name: "anonymous", actor: nil, lessonID: lsn.ID, percent: 10, check: core.IsAuthentication},
		{name: "negative", actor: f.learner, lessonID: lsn.ID, percent: -1, check: core.IsValidation},
		{name: "over 100", actor: f.learner, lessonID: lsn.ID, percent: 101, check: core.IsValidation},
		{name: "unknown lesson", actor: f.learner, lessonID: "6f1c1f9e-4b8a-4a55-9d2f-000000000000", percent: 10, check: core.IsNotFound},
		{name: "not enrolled", actor: stranger, lessonID: lsn.ID, percent: 10, check: core.IsAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.Progress.UpdateLessonProgress(ctx, tt.actor, tt.lessonID, tt.percent, false)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	var touched int
	err := f.env.DB.QueryRow(`SELECT COUNT(*) FROM progress WHERE last_accessed IS NOT NULL`).Scan(&touched)
	require.NoError(t, err)
	assert.Zero(t, touched, "failed updates must not write")

	var strangerRows int
	err = f.env.DB.QueryRow(`
		SELECT COUNT(*) FROM progress p JOIN enrollments e ON e.id = p.enrollment_id WHERE e.user_id = ?`,
		stranger.ID,
	).Scan(&strangerRows)
	require.NoError(t, err)
	assert.Zero(t, strangerRows)
}

func TestService_CompletionCascade(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()
	lessons := f.course.Lessons()

	for i, lsn := range lessons[:len(lessons)-1] {
		_, err := f.env.Progress.UpdateLessonProgress(ctx, f.learner, lsn.ID, 100, true)
		require.NoError(t, err, "lesson %d", i)
		completed, _ := f.completedAt(t)
		assert.False(t, completed, "course completed after %d lessons", i+1)
	}
	assert.Empty(t, f.env.Mail.Sent())

	_, err := f.env.Progress.UpdateLessonProgress(ctx, f.learner, lessons[len(lessons)-1].ID, 100, true)
	require.NoError(t, err)
	completed, stamp := f.completedAt(t)
	assert.True(t, completed)

	sent := f.env.Mail.Sent()
	if assert.Len(t, sent, 1) {
		assert.Contains(t, sent[0].Subject, f.course.Title)
	}

	// completion is stamped once
	_, err = f.env.Progress.UpdateLessonProgress(ctx, f.learner, lessons[0].ID, 100, true)
	require.NoError(t, err)
	completed, again := f.completedAt(t)
	assert.True(t, completed)
	assert.Equal(t, stamp, again)
	assert.Len(t, f.env.Mail.Sent(), 1)

	cp, err := f.env.Progress.GetCourseProgress(ctx, f.learner, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, cp.Percent)
	assert.True(t, cp.Completed)
	assert.Equal(t, 4, cp.CompletedLessons)
}

func TestService_GetOverallProgress(t *testing.T) {
	f := setUp(t)
	ctx := context.Background()

	pct, err := f.env.Progress.GetOverallProgress(ctx, f.learner, f.course.ID)
	require.NoError(t, err)
	assert.Zero(t, pct)

	// partial progress does not count
	_, err = f.env.Progress.UpdateLessonProgress(ctx, f.learner, f.course.Lessons()[1].ID, 99, false)
	require.NoError(t, err)
	pct, err = f.env.Progress.GetOverallProgress(ctx, f.learner, f.course.ID)
	require.NoError(t, err)
	assert.Zero(t, pct)

	stranger := f.env.CreateLearner(t, "Baraka", "baraka@example.com")
	_, err = f.env.Progress.GetOverallProgress(ctx, stranger, f.course.ID)
	assert.True(t, core.IsAuthorization(err))
}

func TestService_EmptyCourse(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	course := env.CreateCourse(t, catalog.NewCourse{Slug: "empty", Title: "Coming soon"})
	learner := env.CreateLearner(t, "Amani", "amani@example.com")

	_, err := env.Enrollments.Enroll(ctx, learner, course.ID)
	require.NoError(t, err)

	pct, err := env.Progress.GetOverallProgress(ctx, learner, course.ID)
	require.NoError(t, err)
	assert.Zero(t, pct)
}
