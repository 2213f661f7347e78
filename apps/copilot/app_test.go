package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/campuscopilot/apps/emulator/echo"
	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/storage/database"
	dummydb "github.com/trezcool/campuscopilot/storage/database/dummy"
	dummykv "github.com/trezcool/campuscopilot/storage/kv/dummy"
	testutil "github.com/trezcool/campuscopilot/tests"
)

type nopCloserKV struct {
	*dummykv.Store
}

func (nopCloserKV) Close() error { return nil }

func openTestApp(t *testing.T, conf *core.Config, kv *dummykv.Store) fixture {
	t.Helper()
	a, err := openApp(context.Background(), conf, testutil.NewLogger(), nopCloserKV{kv})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	var out bytes.Buffer
	return fixture{cli: newCommandLine(a, &out), out: &out, kv: kv}
}

// newEmulator serves an in-memory backend with the demo accounts.
func newEmulator(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	require.NoError(t, dummydb.SeedDemoAccounts(db))
	docs := dummydb.NewDocumentStore(db)
	require.NoError(t, dummydb.SeedDemoProfiles(ctx, docs))

	validate, translator := testutil.NewValidator()
	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf: &core.Config{
			TestMode:  true,
			AppName:   "Campus Copilot",
			SecretKey: "test-secret",
			Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		},
		Logger:         testutil.NewLogger(),
		Docs:           docs,
		Identity:       dummydb.NewIdentityProvider(db),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts.URL
}

func Test_openApp_demo(t *testing.T) {
	f := openTestApp(t, &core.Config{TestMode: true, Remote: core.RemoteConfig{Mode: core.RemoteDemo}}, dummykv.New())
	assert.Nil(t, f.cli.bridge)

	f.runAll(t, []cliTest{
		{name: "login", args: []string{"login", "-demo", "student"}, wantOut: "John Doe"},
		{name: "watch without remote", args: []string{"watch"}, wantErr: errNoRemote},
		{
			name: "student cannot add events",
			args: []string{"events", "add", "-title", "Hackathon", "-description", "24h of code",
				"-start", "2099-01-10 09:00", "-end", "2099-01-11 09:00"},
			wantKind: kind(core.KindAuth),
		},
		{name: "student cannot send", args: []string{"notifications", "send", "-title", "Hi", "-message", "There"}, wantKind: kind(core.KindAuth)},
		{name: "dashboard", args: []string{"dashboard"}, wantOut: "(this device)"},
	})
}

func Test_openApp_unknownMode(t *testing.T) {
	_, err := openApp(context.Background(), &core.Config{Remote: core.RemoteConfig{Mode: "carrier-pigeon"}}, testutil.NewLogger(), nopCloserKV{dummykv.New()})
	assert.Error(t, err)
}

func Test_openApp_sql(t *testing.T) {
	conf := &core.Config{
		TestMode: true,
		Remote:   core.RemoteConfig{Mode: core.RemoteSQL},
		Database: core.DatabaseConfig{Engine: database.EngineSQLite, DSN: filepath.Join(t.TempDir(), "remote.db")},
	}
	f := openTestApp(t, conf, dummykv.New())
	require.NotNil(t, f.cli.bridge)

	f.runAll(t, []cliTest{
		{name: "login", args: []string{"login", "-demo", "admin"}, wantOut: "Dr. Sarah Johnson"},
		{
			name: "add event",
			args: []string{"events", "add", "-title", "Career Fair", "-description", "Meet recruiters",
				"-start", "2099-03-01 10:00", "-end", "2099-03-01 16:00"},
			wantOut: "Created event",
		},
		{name: "dashboard", args: []string{"dashboard"}, wantOut: "Events:        1 (remote)"},
	})

	docs, err := f.cli.bridge.List(context.Background(), core.EventsCollection)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Career Fair", docs[0].Data["title"])

	notifs, err := f.cli.bridge.List(context.Background(), core.NotificationsCollection)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "New Event Added", notifs[0].Data["title"])
}

func Test_openApp_http(t *testing.T) {
	conf := &core.Config{
		TestMode: true,
		Remote:   core.RemoteConfig{Mode: core.RemoteHTTP, URL: newEmulator(t)},
	}
	kv := dummykv.New()
	f := openTestApp(t, conf, kv)

	f.runAll(t, []cliTest{
		{name: "signed out", args: []string{"watch"}, wantErr: errNotSignedIn},
		{name: "wrong password", args: []string{"login", "-email", "student@college.edu"}, pwds: []string{"nope"}, wantErr: errLoginRefused},
		{name: "login", args: []string{"login", "-demo", "admin"}, wantOut: "Dr. Sarah Johnson"},
	})
	token, ok, err := kv.Get(context.Background(), remoteTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	// a second run picks the session and the token up from the local store
	f2 := openTestApp(t, conf, kv)
	f2.runAll(t, []cliTest{
		{name: "restored", args: []string{"whoami"}, wantOut: "admin@college.edu"},
		{
			name: "add assignment",
			args: []string{"assignments", "add", "-title", "Lab Report", "-description", "Optics",
				"-subject", "Physics", "-due", "2099-04-01"},
			wantOut: "Created assignment",
		},
		{name: "watch", args: []string{"watch", "-collection", "assignments", "-for", "500ms"}, wantOut: "1 assignments, 1 pending"},
		{name: "watch: unknown collection", args: []string{"watch", "-collection", "grades"}, wantErr: errHelp},
		{name: "logout", args: []string{"logout"}, wantOut: "Signed out"},
	})
	_, ok, err = kv.Get(context.Background(), remoteTokenKey)
	require.NoError(t, err)
	assert.False(t, ok, "token removed on logout")
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: expiresAt.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func Test_storedToken(t *testing.T) {
	ctx := context.Background()
	logger := testutil.NewLogger()
	valid := signedToken(t, time.Now().Add(time.Hour))
	expired := signedToken(t, time.Now().Add(-time.Hour))

	tests := []struct {
		name   string
		stored string
		conf   string
		want   string
	}{
		{name: "nothing"},
		{name: "stored", stored: valid, want: valid},
		{name: "configured", conf: valid, want: valid},
		{name: "stored wins", stored: valid, conf: "other", want: valid},
		{name: "expired", stored: expired},
		{name: "garbage", stored: "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := dummykv.New()
			if tt.stored != "" {
				require.NoError(t, kv.Set(ctx, remoteTokenKey, tt.stored))
			}
			conf := &core.Config{Remote: core.RemoteConfig{Token: tt.conf}}
			assert.Equal(t, tt.want, storedToken(ctx, conf, logger, kv))
			if tt.want == "" && tt.stored != "" {
				assert.Empty(t, kv.Keys(), "dropped")
			}
		})
	}
}
