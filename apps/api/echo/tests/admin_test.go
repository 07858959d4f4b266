package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/identity"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_adminApi(t *testing.T) {
	env, srv := setup(t)
	admin := env.CreateUser(t, "Root", "root@test.cd", identity.RoleAdmin)
	adminToken := getToken(t, env.Conf, admin)
	act, learnerToken := learner(t, env, "Ada", "ada@test.cd")

	draft := testutil.SampleCourse("draft", 0)
	draft.IsPublished = false

	invalid := testutil.SampleCourse("Not A Slug", 0)
	invalid.Modules[1].Lessons[0].Questions[0].Options[1].IsCorrect = true

	runHTTPTests(t, srv, []httpTest{
		{name: "auth required", path: "/v1/admin/courses", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/admin/courses", token: learnerToken,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "no courses", path: "/v1/admin/courses", token: adminToken, wantCode: http.StatusOK, wantData: []byte("[]")},
		{
			name: "learners cannot create courses", method: http.MethodPost, path: "/v1/admin/courses", token: learnerToken,
			body: marshalObj(t, draft), wantCode: http.StatusForbidden,
		},
	})

	t.Run("invalid course", func(t *testing.T) {
		rec := serve(srv, http.MethodPost, "/v1/admin/courses", adminToken, marshalObj(t, invalid))
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		var res fieldsErr
		decode(t, rec, &res)
		assert.Contains(t, res.Fields, "slug")
	})

	var course catalog.Course
	t.Run("create", func(t *testing.T) {
		rec := serve(srv, http.MethodPost, "/v1/admin/courses", adminToken, marshalObj(t, draft))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &course)
		assert.Equal(t, "draft", course.Slug)
		assert.False(t, course.IsPublished)
		assert.Equal(t, 4, course.TotalLessons())

		rec = serve(srv, http.MethodPost, "/v1/admin/courses", adminToken, marshalObj(t, draft))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "slugs are unique")

		rec = serve(srv, http.MethodPost, "/v1/courses/"+course.ID+"/enroll", learnerToken)
		assert.Equal(t, http.StatusNotFound, rec.Code, "drafts cannot be enrolled in")
	})
	require.NotEmpty(t, course.ID)

	t.Run("all courses", func(t *testing.T) {
		rec := serve(srv, http.MethodGet, "/v1/admin/courses", adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var courses []catalog.Course
		decode(t, rec, &courses)
		require.Len(t, courses, 1)
		assert.Equal(t, course.ID, courses[0].ID)

		rec = serve(srv, http.MethodGet, "/v1/courses", "")
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("publish", func(t *testing.T) {
		path := "/v1/admin/courses/" + course.ID + "/publish"
		rec := serve(srv, http.MethodPut, path, adminToken, marshalObj(t, echoapi.PublishRequest{IsPublished: true}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got catalog.Course
		decode(t, rec, &got)
		assert.True(t, got.IsPublished)

		rec = serve(srv, http.MethodGet, "/v1/courses/draft", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = serve(srv, http.MethodPut, "/v1/admin/courses/"+unknownID+"/publish", adminToken,
			marshalObj(t, echoapi.PublishRequest{IsPublished: true}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("course enrollments", func(t *testing.T) {
		_, err := env.Enrollments.Enroll(context.Background(), act, course.ID)
		require.NoError(t, err)

		rec := serve(srv, http.MethodGet, "/v1/admin/courses/"+course.ID+"/enrollments", adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []enrollment.Summary
		decode(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, act.ID, got[0].UserID)
		assert.Equal(t, "ada@test.cd", got[0].UserEmail)

		rec = serve(srv, http.MethodGet, "/v1/admin/courses/"+unknownID+"/enrollments", adminToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
