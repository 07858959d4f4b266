package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/identity"
	"github.com/trezcool/darasa/storage/database"
	testutil "github.com/trezcool/darasa/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	return &commandLine{
		db:     env.DB,
		engine: database.EngineSQLite,
		svcs:   env.Services,
		out:    new(bytes.Buffer),
	}, env
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			readPasswordFunc = func(int) ([]byte, error) { return []byte(tt.pwd), nil }

			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				require.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	migrateFunc = func(db *sql.DB, engine string, command ...string) error {
		assert.Equal(t, database.EngineSQLite, engine)
		args := command[1:]
		switch command[0] {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command[0], command[0])
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command[0])
		}
		return nil
	}
	t.Cleanup(func() { migrateFunc = database.Migrate })

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
	})
}

func Test_commandLine_migrate_sqlite(t *testing.T) {
	cli, _ := setup(t)
	require.NoError(t, cli.run([]string{"admin", "migrate", "version"}))
	require.NoError(t, cli.run([]string{"admin", "migrate", "up"}))
}

func Test_commandLine_help(t *testing.T) {
	cli, _ := setup(t)
	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "help flag", args: []string{"adduser", "-h"}, wantErr: errHelp},
	})
	assert.Contains(t, cli.out.(*bytes.Buffer).String(), "importcourse")
}

func Test_commandLine_addUser(t *testing.T) {
	cli, env := setup(t)
	env.CreateUser(t, "Ada", "ada@test.cd")

	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no name", args: []string{"adduser", "-email", "bob@test.cd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Bob", "-email", "bob@test.cd"}, wantErr: errHelp},
		{
			name: "weak password", args: []string{"adduser", "-name", "Bob", "-email", "bob@test.cd"},
			pwd: "12345678", wantErrStr: "password",
		},
		{
			name: "email taken", args: []string{"adduser", "-name", "Ada", "-email", "ADA@test.cd"},
			pwd: testutil.Password, wantErrStr: "email",
		},
		{name: "learner", args: []string{"adduser", "-name", "Bob", "-email", "bob@test.cd"}, pwd: testutil.Password},
		{name: "admin", args: []string{"adduser", "-name", "Root", "-email", "root@test.cd", "-admin"}, pwd: testutil.Password},
	})

	ctx := context.Background()
	bob, err := env.Users.GetByEmail(ctx, "bob@test.cd")
	require.NoError(t, err)
	assert.Equal(t, identity.RoleLearner, bob.Role)
	assert.NoError(t, bob.CheckPassword(testutil.Password))

	root, err := env.Users.GetByEmail(ctx, "root@test.cd")
	require.NoError(t, err)
	assert.True(t, root.IsAdmin())
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, env := setup(t)
	usr := env.CreateUser(t, "Ada", "ada@test.cd")
	newPwd := "N3w-Passphrase!"

	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "ada@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, pwd: newPwd, wantErrStr: "user not found"},
		{name: "weak password", args: []string{"resetpassword", "-email", "ada@test.cd"}, pwd: "short", wantErrStr: "password"},
		{name: "reset", args: []string{"resetpassword", "-email", "ADA@test.cd"}, pwd: newPwd},
	})

	refreshed, err := env.Users.GetByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.NotEqual(t, usr.PasswordHash, refreshed.PasswordHash)
	assert.NoError(t, refreshed.CheckPassword(newPwd))
}

const courseYAML = `
slug: intro-to-sql
title: Intro to SQL
description: Tables all the way down.
price_cents: 0
is_published: true
modules:
  - title: Queries
    lessons:
      - title: SELECT
        type: video
        content_url: https://cdn.example.com/select.mp4
        duration_seconds: 600
      - title: Joins
        type: document
        body: Inner, outer and cross.
  - title: Check
    lessons:
      - title: Quiz
        type: quiz
        questions:
          - prompt: Which clause filters rows?
            options:
              - label: WHERE
                is_correct: true
              - label: ORDER BY
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_commandLine_importCourse(t *testing.T) {
	cli, env := setup(t)
	valid := writeFile(t, "course.yaml", courseYAML)

	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"importcourse"}, wantErr: errHelp},
		{name: "missing file", args: []string{"importcourse", "-file", filepath.Join(t.TempDir(), "nope.yaml")}, wantErrStr: "opening course document"},
		{
			name: "unknown field", args: []string{"importcourse", "-file", writeFile(t, "bad.yaml", "slug: x\nprice: 3\n")},
			wantErrStr: "field price not found",
		},
		{
			name: "invalid course", args: []string{"importcourse", "-file", writeFile(t, "invalid.yaml", "slug: Not A Slug\ntitle: x\n")},
			wantErrStr: "slug",
		},
		{name: "import", args: []string{"importcourse", "-file", valid}},
		{name: "slug taken", args: []string{"importcourse", "-file", valid}, wantErrStr: "slug"},
	})

	course, err := env.Catalog.GetCourseBySlug(context.Background(), "intro-to-sql")
	require.NoError(t, err)
	assert.True(t, course.IsPublished)
	assert.Equal(t, "USD", course.Currency)
	require.Len(t, course.Modules, 2)
	assert.Equal(t, 3, course.TotalLessons())
	assert.Equal(t, "Joins", course.Modules[0].Lessons[1].Title)
}
