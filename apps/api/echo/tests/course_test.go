package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/progress"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_courseApi_catalog(t *testing.T) {
	env, srv := setup(t)
	course := env.CreateCourse(t, testutil.SampleCourse("go-plumbing", 0))
	draft := testutil.SampleCourse("draft", 0)
	draft.IsPublished = false
	env.CreateCourse(t, draft)

	t.Run("published courses only", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/courses", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var courses []catalog.Course
		decode(t, rec, &courses)
		require.Len(t, courses, 1)
		assert.Equal(t, course.ID, courses[0].ID)
	})

	t.Run("detail by slug", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/courses/go-plumbing", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got catalog.Course
		decode(t, rec, &got)
		assert.Equal(t, course.ID, got.ID)
		require.Len(t, got.Modules, 2)
		assert.Equal(t, 4, got.TotalLessons())
		assert.Equal(t, "Welcome", got.Modules[0].Lessons[0].Title)
		assert.NotContains(t, rec.Body.String(), "is_correct")
	})

	runHTTPTests(t, srv, []httpTest{
		{name: "unpublished course", path: "/v1/courses/draft", wantCode: http.StatusNotFound},
		{name: "unknown course", path: "/v1/courses/nope", wantCode: http.StatusNotFound},
	})
}

func Test_courseApi_enroll(t *testing.T) {
	env, srv := setup(t)
	free := env.CreateCourse(t, testutil.SampleCourse("free", 0))
	paid := env.CreateCourse(t, testutil.SampleCourse("paid", 4900))
	usr := env.CreateUser(t, "Ada", "ada@test.cd")
	token := getToken(t, env.Conf, usr)

	runHTTPTests(t, srv, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/courses/" + free.ID + "/enroll",
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "unknown course", method: http.MethodPost, path: "/v1/courses/8e0a1d3c-9b4f-4c55-8f0e-4a3f0f1d2c3b/enroll",
			token: token, wantCode: http.StatusNotFound,
		},
		{
			name: "paid course", method: http.MethodPost, path: "/v1/courses/" + paid.ID + "/enroll",
			token: token, wantCode: http.StatusPaymentRequired,
		},
		{name: "no enrollment yet", path: "/v1/courses/" + free.ID + "/enrollment", token: token, wantCode: http.StatusOK, wantData: []byte("null")},
		{name: "no enrollments yet", path: "/v1/enrollments", token: token, wantCode: http.StatusOK, wantData: []byte("[]")},
	})

	var first, second enrollment.Enrollment
	rec := serve(srv, http.MethodPost, "/v1/courses/"+free.ID+"/enroll", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &first)
	rec = serve(srv, http.MethodPost, "/v1/courses/"+free.ID+"/enroll", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &second)

	assert.Equal(t, first.ID, second.ID, "enrolling twice returns the same enrollment")
	assert.Equal(t, usr.ID, first.UserID)
	assert.False(t, first.IsCompleted())

	t.Run("enrollment", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/courses/"+free.ID+"/enrollment", token)
		require.Equal(t, http.StatusOK, rec.Code)
		var got enrollment.Enrollment
		decode(t, rec, &got)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("enrollments", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/enrollments", token)
		require.Equal(t, http.StatusOK, rec.Code)
		var got []enrollment.Summary
		decode(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, "free", got[0].CourseSlug)
		assert.Equal(t, 4, got[0].TotalLessons)
		assert.Equal(t, 0, got[0].CompletedLessons)
	})

	t.Run("seeded progress", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/courses/"+free.ID+"/progress", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got progress.CourseProgress
		decode(t, rec, &got)
		assert.Equal(t, first.ID, got.EnrollmentID)
		assert.Len(t, got.Lessons, 4)
		assert.Equal(t, 0, got.Percent)
	})

	t.Run("progress requires an enrollment", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/courses/"+paid.ID+"/progress", token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
