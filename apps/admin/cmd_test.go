package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devShreyas21/studentPortal/core/user"
	"github.com/devShreyas21/studentPortal/testutil"
)

func setup(t *testing.T) (*commandLine, *testutil.App) {
	app := testutil.NewApp(t)

	return &commandLine{
		usrSvc:     app.Users,
		validate:   app.Validate,
		translator: app.Translator,
	}, app
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

type extra struct {
	pwd string
}

func mockPassword(tt cliTest) {
	readPasswordFunc = func(int) ([]byte, error) {
		if extra, ok := tt.extra.(extra); ok {
			return []byte(extra.pwd), nil
		}
		return nil, nil
	}
}

func checkErr(t *testing.T, err error, tt cliTest) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()

	var ran []string
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}
	assert.Len(t, ran, 10)
}

func Test_commandLine_addUser(t *testing.T) {
	cli, app := setup(t)
	testutil.CreateUser(t, app.UserRepo, "Taken", "taken@test.cd", "", user.RoleTeacher)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Boss", "-email", "boss@test.cd"}, wantErr: errHelp},
		{
			name: "duplicate email", args: []string{"adduser", "-name", "Boss", "-email", "TAKEN@test.cd"},
			extra: extra{pwd: "Zebra-Kivu-93x"}, wantErrStr: "email: " + user.ErrEmailExists.Error(),
		},
		{
			name: "unknown role", args: []string{"adduser", "-name", "Boss", "-email", "boss@test.cd", "-role", "dean"},
			extra: extra{pwd: "Zebra-Kivu-93x"}, wantErrStr: "role: invalid role",
		},
		{
			name: "weak password", args: []string{"adduser", "-name", "Boss", "-email", "boss@test.cd"},
			extra: extra{pwd: "12345678"}, wantErrStr: "password: password cannot be entirely numeric",
		},
		{name: "admin", args: []string{"adduser", "-name", "Boss", "-email", "Boss@Test.cd"}, extra: extra{pwd: "Zebra-Kivu-93x"}},
		{
			name: "teacher", args: []string{"adduser", "-name", "Mwalimu", "-email", "mwalimu@test.cd", "-role", "teacher"},
			extra: extra{pwd: "Zebra-Kivu-93x"},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}

	ctx := context.Background()
	boss, err := app.Users.GetByEmail(ctx, "boss@test.cd")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, boss.Role)
	assert.NoError(t, boss.CheckPassword("Zebra-Kivu-93x"))

	teacher, err := app.Users.GetByEmail(ctx, "mwalimu@test.cd")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, teacher.Role)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, app := setup(t)
	usr := testutil.CreateUser(t, app.UserRepo, "Awe", "awe@test.cd", "", user.RoleStudent)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "Zebra-Kivu-93x"}, wantErr: user.ErrNotFound},
		{
			name: "weak password", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "short"},
			wantErrStr: "pwdminlen: " + errWeakPassword.Error(),
		},
		{name: "reset", args: []string{"resetpassword", "-email", "AWE@test.cd"}, extra: extra{pwd: "Zebra-Kivu-93x"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, err, tt)
			if err != nil {
				return
			}

			refreshed, err := app.Users.GetByID(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.False(t, bytes.Equal(refreshed.PasswordHash, usr.PasswordHash), "failed to update new password")
			assert.NoError(t, refreshed.CheckPassword("Zebra-Kivu-93x"))
		})
	}
}
