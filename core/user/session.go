package user

import (
	"context"
	"fmt"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
)

type State int32

const (
	SignedOut State = iota
	Authenticating
	SignedIn
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case SignedIn:
		return "signed_in"
	default:
		return "signed_out"
	}
}

// ProfileCache keeps the signed-in User on the device.
type ProfileCache interface {
	Get(ctx context.Context) *User
	Save(ctx context.Context, usr User) error
	// ClearAll removes every cached blob, not only the profile.
	ClearAll(ctx context.Context) error
}

type SessionDeps struct {
	Store      IdentityStore
	Cache      ProfileCache
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     core.Logger
}

// SessionManager drives the SignedOut -> Authenticating -> SignedIn lifecycle.
type SessionManager struct {
	store      IdentityStore
	cache      ProfileCache
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger

	mu    sync.Mutex
	state State
}

func NewSessionManager(deps SessionDeps) *SessionManager {
	return &SessionManager{
		store:      deps.Store,
		cache:      deps.Cache,
		validate:   deps.Validate,
		translator: deps.Translator,
		logger:     deps.Logger,
	}
}

func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *SessionManager) begin(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Authenticating {
		return core.E(core.KindValidation, op, "authentication in progress")
	}
	m.state = Authenticating
	return nil
}

func (m *SessionManager) end(signedIn bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if signedIn {
		m.state = SignedIn
	} else {
		m.state = SignedOut
	}
}

func (m *SessionManager) invalid(op string, err error) error {
	return core.E(core.KindValidation, op, core.TranslateFieldErrors(err, m.translator))
}

// Restore resumes the session of a profile left in the cache by a previous run.
func (m *SessionManager) Restore(ctx context.Context) *User {
	usr := m.cache.Get(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticating {
		if usr != nil {
			m.state = SignedIn
		} else {
			m.state = SignedOut
		}
	}
	return usr
}

func (m *SessionManager) Register(ctx context.Context, nu NewUser) (Identity, error) {
	const op = "user.Register"
	if err := m.begin(op); err != nil {
		return Identity{}, err
	}
	if err := nu.Validate(m.validate); err != nil {
		m.end(false)
		return Identity{}, m.invalid(op, err)
	}

	usr, err := m.store.Register(ctx, nu.Email, nu.Password, nu.Profile())
	if err != nil {
		m.end(false)
		if core.IsKind(err, core.KindAlreadyExists) {
			m.logger.Info(fmt.Sprintf("registration refused: %s already exists", nu.Email))
			return Identity{}, err
		}
		m.logger.Error("registration failed", err)
		return Identity{}, errors.Wrap(err, "registering user")
	}

	if err = m.cache.Save(ctx, usr); err != nil {
		m.logger.Error("caching registered user", err, usr)
	}
	m.end(true)
	return Identity{UID: usr.ID, Role: usr.Role}, nil
}

// Login returns nil, nil when the email is unknown, the password is wrong or the role does not match.
func (m *SessionManager) Login(ctx context.Context, creds Credentials) (*User, error) {
	const op = "user.Login"
	if err := m.begin(op); err != nil {
		return nil, err
	}
	if err := creds.Validate(m.validate); err != nil {
		m.end(false)
		return nil, m.invalid(op, err)
	}

	usr, err := m.store.Verify(ctx, creds.Email, creds.Password)
	if err != nil {
		m.end(false)
		if core.IsKind(err, core.KindAuth) {
			return nil, nil
		}
		m.logger.Error("login failed", err)
		return nil, errors.Wrap(err, "verifying credentials")
	}
	if usr.Role != creds.Role {
		if err = m.store.SignOut(ctx); err != nil {
			m.logger.Warn("signing out after role mismatch", err)
		}
		m.end(false)
		return nil, nil
	}

	if err = m.cache.Save(ctx, usr); err != nil {
		m.logger.Error("caching logged in user", err, usr)
	}
	m.end(true)
	return &usr, nil
}

// Logout signs out and clears every cached blob.
func (m *SessionManager) Logout(ctx context.Context) error {
	if err := m.store.SignOut(ctx); err != nil {
		m.logger.Warn("signing out of identity store", err)
	}
	err := m.cache.ClearAll(ctx)
	m.end(false)
	if err != nil {
		m.logger.Error("clearing cached data", err)
		return core.E(core.KindStorage, "user.Logout", err)
	}
	return nil
}

// CurrentUser reads the cached profile only.
func (m *SessionManager) CurrentUser(ctx context.Context) *User {
	return m.cache.Get(ctx)
}

func (m *SessionManager) IsAuthenticated(ctx context.Context) bool {
	return m.CurrentUser(ctx) != nil
}

func (m *SessionManager) HasRole(ctx context.Context, role string) bool {
	usr := m.CurrentUser(ctx)
	return usr != nil && usr.Role == role
}

// UpdateProfile edits the signed-in User's profile in the identity store and the cache.
func (m *SessionManager) UpdateProfile(ctx context.Context, uu UpdateUser) (User, error) {
	const op = "user.UpdateProfile"
	current := m.CurrentUser(ctx)
	if current == nil {
		return User{}, core.E(core.KindAuth, op, "not signed in")
	}
	if err := uu.Validate(m.validate); err != nil {
		if _, ok := err.(*core.ValidationError); ok {
			return User{}, core.E(core.KindValidation, op, err)
		}
		return User{}, m.invalid(op, err)
	}

	usr, err := m.store.UpdateProfile(ctx, uu.Apply(*current))
	if err != nil {
		return User{}, errors.Wrap(err, "updating profile")
	}
	if err = m.cache.Save(ctx, usr); err != nil {
		m.logger.Error("caching updated profile", err, usr)
		return usr, core.E(core.KindStorage, op, err)
	}
	return usr, nil
}

// DemoCredentials returns the login forms of the demo accounts, keyed by role.
func (m *SessionManager) DemoCredentials() map[string]Credentials {
	return DemoCredentials()
}
