package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core/testutil"
	"github.com/classtrack/classtrack/core/user"
)

func setup(t *testing.T) (*commandLine, *testutil.Services, *bytes.Buffer) {
	svcs := testutil.NewServices(t)
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		usrRepo:       svcs.UserRepo,
		attendanceSvc: svcs.Attendance,
		out:           out,
	}, svcs, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkRunErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, want an error")
		}
		return
	}
	switch {
	case tt.wantErr != nil:
		if errors.Cause(err) != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	runMigrationsFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_rooms", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkRunErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, svcs, out := setup(t)

	testutil.CreateUser(t, svcs.UserRepo, "Ada", "S001", "ada@school.test", "Passw0rd!", user.RoleStudent, true)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("N3w-Secret!"), nil }

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-name", "Root"}, wantErr: errHelp},
		{name: "bad flag", args: []string{"adduser", "-lol"}, wantErr: errHelp},
		{name: "invalid role", args: []string{"adduser", "-name", "Root", "-email", "root@school.test", "-role", "janitor"}, wantErr: errInvalidRole},
		{
			name: "taken student ID", args: []string{"adduser", "-name", "Eve", "-email", "eve@school.test", "-role", "student", "-id", "S001"},
			wantErr: user.ErrInstitutionalIDExists,
		},
		{name: "create admin", args: []string{"adduser", "-name", "Root", "-email", " ROOT@school.test "}},
		{name: "update existing", args: []string{"adduser", "-name", "Ada Lovelace", "-email", "ada@school.test", "-role", "teacher"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkRunErr(t, tt, cli.run(args))
		})
	}

	ctx := context.Background()
	root, err := svcs.Users.GetByEmail(ctx, "root@school.test")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if root.Role != user.RoleAdmin || !root.IsActive || root.CheckPassword("N3w-Secret!") != nil {
		t.Errorf("created user = %+v", root)
	}

	ada, err := svcs.Users.GetByEmail(ctx, "ada@school.test")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if ada.Name != "Ada Lovelace" || ada.Role != user.RoleTeacher || ada.InstitutionalID != "S001" {
		t.Errorf("updated user = %+v", ada)
	}
	if !strings.Contains(out.String(), "created root@school.test (admin)") {
		t.Errorf("output = %q", out.String())
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, svcs, _ := setup(t)

	usr := testutil.CreateUser(t, svcs.UserRepo, "User", "S001", "awe@school.test", "Passw0rd!", user.RoleStudent, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "user but no password", args: []string{"resetpassword", "-user", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-user", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with student ID", args: []string{"resetpassword", "-user", usr.InstitutionalID}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-user", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := svcs.UserRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				if pwd := tt.extra.(extra).pwd; refreshedUsr.CheckPassword(pwd) != nil {
					t.Errorf("password %q not set", pwd)
				}
			} else if errors.Cause(err) != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_report(t *testing.T) {
	cli, svcs, out := setup(t)

	teacher := testutil.CreateUser(t, svcs.UserRepo, "Grace", "", "grace@school.test", "", user.RoleTeacher, true)
	ada := testutil.CreateUser(t, svcs.UserRepo, "Ada", "S001", "ada@school.test", "", user.RoleStudent, true)
	bob := testutil.CreateUser(t, svcs.UserRepo, "Bob", "S002", "bob@school.test", "", user.RoleStudent, true)
	math := testutil.CreateClass(t, svcs.ClassRepo, "Math", "", teacher.ID, 2)

	if err := cli.run([]string{"admin", "report"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	if !strings.Contains(out.String(), "no student has reached an absence limit") {
		t.Errorf("empty digest output = %q", out.String())
	}

	testutil.RecordAbsences(t, svcs.AttendanceRepo, ada, math, 2)
	testutil.RecordAbsences(t, svcs.AttendanceRepo, bob, math, 1)

	out.Reset()
	if err := cli.run([]string{"admin", "report", "-class", math.ID}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("report output = %q", out.String())
	}
	if lines[0] != "Math (limit 2)" {
		t.Errorf("title = %q", lines[0])
	}
	if got := strings.Fields(lines[2]); strings.Join(got, " ") != "Ada 2/2 100% !" {
		t.Errorf("first row = %q", lines[2])
	}
	if got := strings.Fields(lines[3]); strings.Join(got, " ") != "Bob 1/2 50%" {
		t.Errorf("second row = %q", lines[3])
	}

	out.Reset()
	if err := cli.run([]string{"admin", "report"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	if strings.Contains(out.String(), "Bob") || !strings.Contains(out.String(), "Ada") {
		t.Errorf("digest output = %q", out.String())
	}
}
