package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
	"github.com/trezcool/campuscopilot/storage/database"
	testutil "github.com/trezcool/campuscopilot/tests"
)

func setup(t *testing.T) *commandLine {
	return &commandLine{
		conf: &core.Config{
			TestMode: true,
			Database: core.DatabaseConfig{
				Engine: database.EngineSQLite,
				DSN:    filepath.Join(t.TempDir(), "remote.db"),
			},
		},
		logger: testutil.NewLogger(),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkRun(t *testing.T, cli *commandLine, tt cliTest) {
	t.Helper()
	args := append([]string{"emulator"}, tt.args...)
	if err := cli.run(args); err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() error = nil, want an error")
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })
	gooseRunFunc = func(ctx context.Context, db *sql.DB, engine, command string, args ...string) error {
		if engine != database.EngineSQLite {
			return fmt.Errorf("unexpected engine %q", engine)
		}
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
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
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkRun(t, cli, tt)
		})
	}
}

func Test_commandLine_migrateDatabase(t *testing.T) {
	cli := setup(t)
	checkRun(t, cli, cliTest{name: "up", args: []string{"migrate", "up"}})
	checkRun(t, cli, cliTest{name: "status", args: []string{"migrate", "status"}})
	checkRun(t, cli, cliTest{name: "reset", args: []string{"migrate", "reset"}})
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	checkRun(t, cli, cliTest{name: "seed", args: []string{"seed"}})
	checkRun(t, cli, cliTest{name: "seed again", args: []string{"seed"}})

	b, err := cli.openBackend(context.Background(), false)
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.close()) }()
	assertDemoAccounts(t, b)
}

func Test_commandLine_openMemoryBackend(t *testing.T) {
	cli := setup(t)
	b, err := cli.openBackend(context.Background(), true)
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.close()) }()
	assertDemoAccounts(t, b)
}

func assertDemoAccounts(t *testing.T, b backend) {
	t.Helper()
	store := user.NewRemoteIdentityStore(b.idp, b.docs)
	for role, creds := range user.DemoCredentials() {
		usr, err := store.Verify(context.Background(), creds.Email, creds.Password)
		require.NoError(t, err, role)
		assert.Equal(t, role, usr.Role)
	}
}

func Test_commandLine_serveBadFlag(t *testing.T) {
	cli := setup(t)
	checkRun(t, cli, cliTest{name: "bad flag", args: []string{"serve", "-lol"}, wantErr: errHelp})
}
