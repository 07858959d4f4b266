package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/identity"
	testutil "github.com/trezcool/darasa/tests"
)

func TestHome(t *testing.T) {
	_, srv := setup(t)

	rec := serve(srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Darasa API!", rec.Body.String())
}

func Test_userApi_login(t *testing.T) {
	env, srv := setup(t)
	env.CreateUser(t, "Ada", "ada@test.cd")

	login := func(email, pwd string) []byte {
		return marshalObj(t, map[string]string{"email": email, "password": pwd})
	}
	authFailed := marshalObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/users/login",
			body: login("bob@test.cd", testutil.Password), wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login",
			body: login("ada@test.cd", "nope"), wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "invalid payload", method: http.MethodPost, path: "/v1/users/login",
			body: login("not-an-email", ""), wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("invalid payload names fields", func(t *testing.T) {
		rec := serve(srv, http.MethodPost, "/v1/users/login", "", login("not-an-email", ""))
		var res fieldsErr
		decode(t, rec, &res)
		assert.Contains(t, res.Fields, "email")
		assert.Contains(t, res.Fields, "password")
	})

	t.Run("success", func(t *testing.T) {
		rec := serve(srv, http.MethodPost, "/v1/users/login", "", login(" ADA@test.cd ", testutil.Password))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res struct{ Token string }
		decode(t, rec, &res)
		assert.NotEmpty(t, res.Token)

		var session *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "session" {
				session = c
			}
		}
		require.NotNil(t, session)
		assert.Equal(t, res.Token, session.Value)
		assert.True(t, session.HttpOnly)

		// the session cookie authenticates
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		req.AddCookie(&http.Cookie{Name: "session", Value: session.Value})
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		usr, err := env.Users.GetByEmail(req.Context(), "ada@test.cd")
		require.NoError(t, err)
		assert.True(t, usr.LastLogin.Valid)
	})
}

func Test_userApi_me(t *testing.T) {
	env, srv := setup(t)
	usr := env.CreateUser(t, "Ada", "ada@test.cd")

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "bad token", path: "/v1/users/me", token: "not.a.jwt",
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "actor", path: "/v1/users/me", token: getToken(t, env.Conf, usr),
			wantCode: http.StatusOK, wantData: marshalObj(t, usr.Actor()),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("token of an unknown user", func(t *testing.T) {
		ghost := usr
		ghost.ID = "8e0a1d3c-9b4f-4c55-8f0e-4a3f0f1d2c3b"
		rec := serve(srv, http.MethodGet, "/v1/users/me", getToken(t, env.Conf, ghost))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		conf := *env.Conf
		conf.SecretKey = "another-secret"
		rec := serve(srv, http.MethodGet, "/v1/users/me", getToken(t, &conf, usr))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	env, srv := setup(t)
	admin := env.CreateUser(t, "Root", "root@test.cd", identity.RoleAdmin)

	rec := serve(srv, http.MethodPost, "/v1/users/token-refresh", getToken(t, env.Conf, admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct{ Token string }
	decode(t, rec, &res)
	require.NotEmpty(t, res.Token)

	rec = serve(srv, http.MethodGet, "/v1/users/me", res.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var act identity.Actor
	decode(t, rec, &act)
	assert.Equal(t, admin.ID, act.ID)
	assert.True(t, act.IsAdmin())
}
