package main

import (
	"context"
	"fmt"
	"io"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/bridge"
	"github.com/trezcool/campuscopilot/core/campus"
	"github.com/trezcool/campuscopilot/core/user"
	remotesvc "github.com/trezcool/campuscopilot/services/remote"
	"github.com/trezcool/campuscopilot/storage/cache"
	"github.com/trezcool/campuscopilot/storage/database"
	dummydb "github.com/trezcool/campuscopilot/storage/database/dummy"
	"github.com/trezcool/campuscopilot/storage/database/notify"
	"github.com/trezcool/campuscopilot/storage/database/sqldoc"
)

var nowFunc = time.Now // mockable

// remoteTokenKey holds the bearer token of the HTTP backend. It is not a cache blob.
const remoteTokenKey = "remoteToken"

type app struct {
	conf     *core.Config
	logger   core.Logger
	session  *user.SessionManager
	svc      *campus.Service
	settings campus.SettingsStore
	bridge   *bridge.Bridge // nil when running local-only
	closers  []io.Closer
}

type appDeps struct {
	Conf   *core.Config
	Logger core.Logger
	KV     core.KVStore
	Docs   core.DocumentStore // nil: local-only
	Store  user.IdentityStore
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	campus.InitValidators(validate, translator)
	return validate, translator
}

func newApp(deps appDeps) *app {
	opts := []cache.Option{cache.WithHealCorrupt(deps.Conf.Cache.HealCorrupt)}
	validate, translator := newValidator()

	a := &app{
		conf:     deps.Conf,
		logger:   deps.Logger,
		settings: cache.NewSettingsStore(deps.KV, deps.Logger, opts...),
	}
	a.session = user.NewSessionManager(user.SessionDeps{
		Store:      deps.Store,
		Cache:      cache.NewUserStore(deps.KV, deps.Logger),
		Validate:   validate,
		Translator: translator,
		Logger:     deps.Logger,
	})

	campusDeps := campus.Deps{
		Events:        cache.NewEventRepository(deps.KV, deps.Logger, opts...),
		Assignments:   cache.NewAssignmentRepository(deps.KV, deps.Logger, opts...),
		Clubs:         cache.NewClubRepository(deps.KV, deps.Logger, opts...),
		Notifications: cache.NewNotificationRepository(deps.KV, deps.Logger, opts...),
		Settings:      a.settings,
		Session:       a.session,
		Validate:      validate,
		Translator:    translator,
		Logger:        deps.Logger,
	}
	if deps.Docs != nil {
		a.bridge = bridge.New(deps.Docs, deps.Logger)
		a.closers = append(a.closers, closerFunc(func() error { a.bridge.Close(); return nil }))
		campusDeps.Remote = a.bridge
	}
	a.svc = campus.NewService(campusDeps)
	return a
}

// Close releases the bridge, then the databases, in reverse opening order.
func (a *app) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i].Close())
	}
	return err
}

type kvCloser interface {
	core.KVStore
	io.Closer
}

// openApp wires the cache over kv to the configured remote mode and restores the
// previous session.
func openApp(ctx context.Context, conf *core.Config, logger core.Logger, kv kvCloser) (*app, error) {
	deps := appDeps{Conf: conf, Logger: logger, KV: kv}
	var closers []io.Closer

	switch conf.Remote.Mode {
	case core.RemoteDemo:
		db, err := dummydb.Open()
		if err != nil {
			return nil, err
		}
		if deps.Store, err = dummydb.NewIdentityStore(db); err != nil {
			return nil, err
		}
	case core.RemoteHTTP:
		client := remotesvc.New(conf.Remote.URL, storedToken(ctx, conf, logger, kv), logger)
		deps.Docs = client
		deps.Store = user.NewRemoteIdentityStore(&persistentIdentity{client: client, kv: kv}, client)
	case core.RemoteSQL:
		engine := conf.Database.Engine
		db, err := database.Open(ctx, conf.Database)
		if err != nil {
			return nil, err
		}
		closers = append(closers, db)
		if err = database.Migrate(ctx, db, engine); err != nil {
			_ = db.Close()
			return nil, err
		}
		deps.Docs = sqldoc.NewDocumentStore(db, engine, notify.NewHub())
		if err = sqldoc.SeedDemoAccounts(ctx, db, engine, deps.Docs); err != nil {
			_ = db.Close()
			return nil, err
		}
		deps.Store = user.NewRemoteIdentityStore(sqldoc.NewIdentityProvider(db, engine), deps.Docs)
	default:
		return nil, core.E(core.KindInternal, "copilot.openApp", fmt.Sprintf("unknown remote mode %q", conf.Remote.Mode))
	}

	a := newApp(deps)
	a.closers = append(append([]io.Closer{kv}, closers...), a.closers...)
	if usr := a.session.Restore(ctx); usr != nil {
		logger.Debug(fmt.Sprintf("restored session of %s", usr.Email))
	}
	return a, nil
}

// storedToken returns the token saved by the last sign-in, or the configured one.
// Expired tokens are dropped.
func storedToken(ctx context.Context, conf *core.Config, logger core.Logger, kv core.KVStore) string {
	token, ok, err := kv.Get(ctx, remoteTokenKey)
	if err != nil {
		logger.Warn("reading remote token", err)
	}
	if !ok || token == "" {
		token = conf.Remote.Token
	}
	if token != "" && remotesvc.TokenExpired(token, nowFunc()) {
		logger.Info("remote token expired, sign in again")
		if err = kv.Remove(ctx, remoteTokenKey); err != nil {
			logger.Warn("removing remote token", err)
		}
		return ""
	}
	return token
}

// persistentIdentity keeps the HTTP client's bearer token in the local store between runs.
type persistentIdentity struct {
	client *remotesvc.Client
	kv     core.KVStore
}

var _ core.IdentityProvider = (*persistentIdentity)(nil) // interface compliance check

func (p *persistentIdentity) save(ctx context.Context, uid string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if err = p.kv.Set(ctx, remoteTokenKey, p.client.Token()); err != nil {
		return "", core.E(core.KindStorage, "copilot.saveToken", err)
	}
	return uid, nil
}

func (p *persistentIdentity) SignUp(ctx context.Context, email, password string) (string, error) {
	uid, err := p.client.SignUp(ctx, email, password)
	return p.save(ctx, uid, err)
}

func (p *persistentIdentity) SignIn(ctx context.Context, email, password string) (string, error) {
	uid, err := p.client.SignIn(ctx, email, password)
	return p.save(ctx, uid, err)
}

func (p *persistentIdentity) SignOut(ctx context.Context) error {
	if err := p.client.SignOut(ctx); err != nil {
		return err
	}
	if err := p.kv.Remove(ctx, remoteTokenKey); err != nil {
		return core.E(core.KindStorage, "copilot.SignOut", err)
	}
	return nil
}
