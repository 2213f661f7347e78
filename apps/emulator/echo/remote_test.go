package echoapi_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/bridge"
	"github.com/trezcool/campuscopilot/core/campus"
	"github.com/trezcool/campuscopilot/core/user"
	remotesvc "github.com/trezcool/campuscopilot/services/remote"
	testutil "github.com/trezcool/campuscopilot/tests"
)

// newClient serves app over HTTP and returns a remote client of it.
func newClient(t *testing.T, app testServer) *remotesvc.Client {
	ts := httptest.NewServer(app)
	t.Cleanup(ts.Close)
	return remotesvc.New(ts.URL, "", testutil.NewLogger(), remotesvc.WithReconnectBackoff(10*time.Millisecond, 50*time.Millisecond))
}

func TestRemote_identity(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, setup(t))
	store := user.NewRemoteIdentityStore(client, client)

	usr := testutil.RegisterUser(t, store, "Ada Lovelace", "ada@college.edu", "engine99", user.RoleStudent)
	assert.NotEmpty(t, client.Token())

	require.NoError(t, store.SignOut(ctx))
	assert.Empty(t, client.Token())

	got, err := store.Verify(ctx, "ada@college.edu", "engine99")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, "Ada Lovelace", got.Name)

	_, err = store.Verify(ctx, "ada@college.edu", "wrong")
	assert.True(t, core.IsKind(err, core.KindAuth))

	_, err = store.Register(ctx, "ada@college.edu", "engine99", user.User{Name: "Ada"})
	assert.True(t, core.IsKind(err, core.KindAlreadyExists))

	_, err = client.SignUp(ctx, "not-an-email", "engine99")
	require.True(t, core.IsKind(err, core.KindValidation))
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Fields[0].Field)
}

func TestRemote_errors(t *testing.T) {
	ctx := context.Background()
	client := newClient(t, setup(t))
	_, err := client.SignUp(ctx, "ada@college.edu", "engine99")
	require.NoError(t, err)

	_, err = client.Get(ctx, core.EventsCollection, "missing")
	assert.True(t, core.IsKind(err, core.KindNotFound))

	err = client.Delete(ctx, core.EventsCollection, "missing")
	assert.True(t, core.IsKind(err, core.KindNotFound))

	_, err = client.List(ctx, "grades")
	assert.True(t, core.IsKind(err, core.KindNotFound))

	client.SetToken("")
	_, err = client.List(ctx, core.EventsCollection)
	assert.True(t, core.IsKind(err, core.KindAuth))
	assert.Equal(t, "missing or malformed jwt", core.Message(err))
}

func TestRemote_bridge(t *testing.T) {
	ctx := context.Background()
	app := setup(t)
	client := newClient(t, app)
	_, err := client.SignUp(ctx, "ada@college.edu", "engine99")
	require.NoError(t, err)

	b := bridge.New(client, testutil.NewLogger())
	t.Cleanup(b.Close)

	var (
		mu     sync.Mutex
		titles []string
		calls  int
	)
	unsubscribe, err := bridge.SubscribeTo(b, core.EventsCollection, func(events []campus.Event) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		titles = titles[:0]
		for _, e := range events {
			titles = append(titles, e.Title)
		}
	})
	require.NoError(t, err)
	defer unsubscribe()

	snapshot := func() (int, []string) {
		mu.Lock()
		defer mu.Unlock()
		return calls, append([]string(nil), titles...)
	}
	assert.Eventually(t, func() bool { n, _ := snapshot(); return n >= 1 }, 2*time.Second, 10*time.Millisecond, "initial snapshot")

	evt := campus.Event{ID: "local", Title: "Hackathon", Type: campus.EventGeneral, Priority: campus.PriorityHigh}
	id, err := b.Create(ctx, core.EventsCollection, evt)
	require.NoError(t, err)
	assert.NotEqual(t, "local", id)

	// a write by another process reaches the subscriber too
	_, err = app.docs.Create(ctx, core.EventsCollection, map[string]interface{}{"title": "Career Fair", "type": "event", "priority": "low"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, got := snapshot()
		return len(got) == 2 && got[0] == "Hackathon" && got[1] == "Career Fair"
	}, 2*time.Second, 10*time.Millisecond)

	events, err := bridge.ListOf[campus.Event](ctx, b, core.EventsCollection)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, id, events[0].ID)
}
