package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
	dummydb "github.com/trezcool/campuscopilot/storage/database/dummy"
	dummykv "github.com/trezcool/campuscopilot/storage/kv/dummy"
	testutil "github.com/trezcool/campuscopilot/tests"
)

type cliTest struct {
	name     string
	args     []string // without program name
	pwds     []string // answers to the password prompts
	wantErr  error
	wantKind *core.Kind
	wantOut  string
}

func kind(k core.Kind) *core.Kind { return &k }

type fixture struct {
	cli *commandLine
	out *bytes.Buffer
	kv  *dummykv.Store
}

func newFixture(t *testing.T, docs core.DocumentStore, store user.IdentityStore) fixture {
	t.Helper()
	if store == nil {
		db, err := dummydb.Open()
		require.NoError(t, err)
		store, err = dummydb.NewIdentityStore(db)
		require.NoError(t, err)
	}
	kv := dummykv.New()
	a := newApp(appDeps{
		Conf:   &core.Config{TestMode: true, Remote: core.RemoteConfig{Mode: core.RemoteDemo}},
		Logger: testutil.NewLogger(),
		KV:     kv,
		Docs:   docs,
		Store:  store,
	})
	t.Cleanup(func() { _ = a.Close() })

	var out bytes.Buffer
	return fixture{cli: newCommandLine(a, &out), out: &out, kv: kv}
}

// mockPasswords answers the password prompts with pwds, in order.
func mockPasswords(t *testing.T, pwds ...string) {
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	readPasswordFunc = func(int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

func (f fixture) run(t *testing.T, tt cliTest) {
	t.Helper()
	mockPasswords(t, tt.pwds...)
	f.out.Reset()

	err := f.cli.run(context.Background(), append([]string{"copilot"}, tt.args...))
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantKind != nil:
		require.Error(t, err)
		assert.Equal(t, *tt.wantKind, core.KindOf(err), err.Error())
	default:
		require.NoError(t, err)
	}
	if tt.wantOut != "" {
		assert.Contains(t, f.out.String(), tt.wantOut)
	}
}

func (f fixture) runAll(t *testing.T, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.run(t, tt)
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.runAll(t, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "signed out", args: []string{"events"}, wantErr: errNotSignedIn},
		{name: "login: no args", args: []string{"login"}, wantErr: errHelp},
		{name: "login: bad flag", args: []string{"login", "-lol"}, wantErr: errHelp},
		{name: "login: unknown demo", args: []string{"login", "-demo", "dean"}, wantErr: errHelp},
		{name: "login: empty password", args: []string{"login", "-email", "student@college.edu"}, wantErr: errHelp},
		{name: "register: no email", args: []string{"register", "-name", "Ada"}, wantErr: errHelp},
		{name: "whoami signed out", args: []string{"whoami"}, wantErr: errNotSignedIn},
	})
}

func Test_commandLine_login(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.runAll(t, []cliTest{
		{name: "wrong password", args: []string{"login", "-email", "student@college.edu"}, pwds: []string{"nope"}, wantErr: errLoginRefused},
		{name: "role mismatch", args: []string{"login", "-email", "student@college.edu", "-role", "admin"}, pwds: []string{"student123"}, wantErr: errLoginRefused},
		{name: "invalid role", args: []string{"login", "-email", "student@college.edu", "-role", "dean"}, pwds: []string{"student123"}, wantKind: kind(core.KindValidation)},
		{name: "student", args: []string{"login", "-email", "Student@College.edu"}, pwds: []string{"student123"}, wantOut: "Signed in as John Doe (student)"},
		{name: "whoami", args: []string{"whoami"}, wantOut: "student@college.edu"},
		{name: "demo admin", args: []string{"login", "-demo", "admin"}, wantOut: "Signed in as Dr. Sarah Johnson (admin)"},
		{name: "logout", args: []string{"logout"}, wantOut: "Signed out"},
		{name: "whoami after logout", args: []string{"whoami"}, wantErr: errNotSignedIn},
	})
	assert.Empty(t, f.kv.Keys())
}

func Test_commandLine_register(t *testing.T) {
	f := newFixture(t, nil, nil)
	form := []string{"register", "-name", "Ada Lovelace", "-email", "ada@college.edu", "-college", "Tech University",
		"-department", "Mathematics", "-studentid", "MA0001", "-year", "2"}
	f.runAll(t, []cliTest{
		{name: "passwords differ", args: form, pwds: []string{"engine-42", "engine-43"}, wantKind: kind(core.KindValidation)},
		{name: "weak password", args: form, pwds: []string{"ada", "ada"}, wantKind: kind(core.KindValidation)},
		{name: "registered", args: form, pwds: []string{"engine-42", "engine-42"}, wantOut: "Registered ada@college.edu as student"},
		{name: "signed in", args: []string{"whoami"}, wantOut: "Ada Lovelace"},
		{name: "duplicate", args: form, pwds: []string{"engine-42", "engine-42"}, wantKind: kind(core.KindAlreadyExists)},
		{name: "profile", args: []string{"profile", "-name", "Ada King", "-year", "3"}, wantOut: "Ada King"},
		{name: "invalid profile", args: []string{"profile", "-year", "42"}, wantKind: kind(core.KindValidation)},
	})
}

func Test_commandLine_campus(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.run(t, cliTest{args: []string{"login", "-demo", "admin"}})

	f.runAll(t, []cliTest{
		{name: "events", args: []string{"events"}, wantOut: "Computer Science Lecture"},
		{name: "upcoming", args: []string{"events", "list", "-upcoming", "1"}, wantOut: "Computer Science Lecture"},
		{name: "add event: invalid", args: []string{"events", "add", "-title", "Hackathon"}, wantKind: kind(core.KindValidation)},
		{name: "add event: bad date", args: []string{"events", "add", "-title", "Hackathon", "-start", "soon"}, wantKind: kind(core.KindValidation)},
		{
			name: "add event",
			args: []string{"events", "add", "-title", "Hackathon", "-description", "24h of code",
				"-start", "2099-01-10 09:00", "-end", "2099-01-11 09:00", "-location", "Library", "-type", "club"},
			wantOut: "Created event",
		},
		{name: "event listed", args: []string{"events"}, wantOut: "Hackathon"},
		{name: "linked notification", args: []string{"notifications", "list", "-type", "event"}, wantOut: "Hackathon - Library"},
		{name: "complete event", args: []string{"events", "complete", "-id", "1"}, wantOut: "Computer Science Lecture"},
		{name: "complete: no id", args: []string{"events", "complete"}, wantErr: errHelp},
		{name: "complete: unknown id", args: []string{"events", "complete", "-id", "404"}, wantKind: kind(core.KindNotFound)},
		{name: "delete event", args: []string{"events", "delete", "-id", "2"}, wantOut: "Deleted event 2"},
		{name: "unknown action", args: []string{"events", "lol"}, wantErr: errHelp},

		{name: "pending", args: []string{"assignments", "list", "-pending"}, wantOut: "Calculus Homework"},
		{
			name: "add assignment",
			args: []string{"assignments", "add", "-title", "Essay", "-description", "2 pages",
				"-subject", "History", "-due", "2099-02-01"},
			wantOut: "Created assignment",
		},
		{name: "submit", args: []string{"assignments", "complete", "-id", "2"}, wantOut: "submitted"},
		{name: "reopen", args: []string{"assignments", "reopen", "-id", "2"}, wantOut: "Calculus Homework"},

		{name: "send", args: []string{"notifications", "send", "-title", "Room change", "-message", "Moved to 204"}, wantOut: "Sent notification"},
		{name: "unread", args: []string{"notifications", "list", "-unread"}, wantOut: "Room change"},
		{name: "read", args: []string{"notifications", "read", "-id", "1"}},
		{name: "read-all", args: []string{"notifications", "read-all"}, wantOut: "Marked"},
		{name: "none unread", args: []string{"notifications", "list", "-unread"}, wantOut: "No notifications"},
		{name: "delete notification", args: []string{"notifications", "delete", "-id", "3"}, wantOut: "Deleted notification 3"},

		{name: "clubs", args: []string{"clubs"}, wantOut: "Debate Society"},
		{name: "join", args: []string{"clubs", "join", "-id", "2"}, wantOut: "Debate Society"},
		{name: "mine", args: []string{"clubs", "list", "-mine"}, wantOut: "Debate Society"},
		{name: "leave", args: []string{"clubs", "leave", "-id", "1"}},
		{name: "create club", args: []string{"clubs", "create", "-name", "Chess Club"}, wantOut: "Created club"},
		{name: "create club: no name", args: []string{"clubs", "create"}, wantKind: kind(core.KindValidation)},

		{name: "dashboard", args: []string{"dashboard"}, wantOut: "Welcome back, Dr. Sarah Johnson!"},
	})

	mine := f.cli.svc.MyClubs(context.Background())
	names := make([]string, 0, len(mine))
	for _, c := range mine {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Debate Society", "Photography Club", "Chess Club"}, names)
}

func Test_commandLine_settings(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.runAll(t, []cliTest{
		{name: "defaults", args: []string{"settings"}, wantOut: "English"},
		{name: "invalid reminder", args: []string{"settings", "set", "-reminder", "7"}, wantKind: kind(core.KindValidation)},
		{name: "set", args: []string{"settings", "set", "-language", "Spanish", "-reminder", "15", "-darkmode"}, wantOut: "15 minutes before"},
	})

	s := f.cli.svc.Settings(context.Background())
	assert.Equal(t, "Spanish", s.Language)
	assert.True(t, s.DarkMode)
	assert.True(t, s.Notifications, "untouched")

	err := f.cli.run(context.Background(), []string{"copilot", "settings", "set", "-reminder", "7"})
	require.Error(t, err)
	msg := f.cli.describe(context.Background(), err)
	assert.Contains(t, msg, "Revisa los campos marcados.")
	assert.Contains(t, msg, "reminderTime")
}
