package dummydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
)

var (
	msgEmailExists        = "a user with this email already exists"
	msgInvalidCredentials = "invalid email or password"
)

// SeedDemoAccounts adds the demo accounts that are not registered yet.
func SeedDemoAccounts(db *DB) error {
	db.identities.Lock()
	defer db.identities.Unlock()

	for _, demo := range user.DemoAccounts() {
		if _, ok := db.identities.table[demo.Email]; ok {
			continue
		}
		acc := &user.Account{User: demo.User}
		if err := acc.SetPassword(demo.Password); err != nil {
			return errors.Wrap(err, "hashing demo password")
		}
		db.identities.table[demo.Email] = acc
	}
	return nil
}

// SeedDemoProfiles writes the `users/{uid}` profiles of the demo accounts to docs, for
// backends that join the identity provider to a document store.
func SeedDemoProfiles(ctx context.Context, docs core.DocumentStore) error {
	for _, demo := range user.DemoAccounts() {
		data, err := core.EncodeData(demo.User)
		if err != nil {
			return errors.Wrap(err, "encoding demo profile")
		}
		if _, err = docs.Set(ctx, core.UsersCollection, demo.ID, data); err != nil {
			return errors.Wrap(err, "saving demo profile")
		}
	}
	return nil
}

func (t *identityTable) create(op, email, pwd string, profile user.User) (user.User, error) {
	email = core.CleanString(email, true /* lower */)

	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[email]; ok {
		return user.User{}, core.E(core.KindAlreadyExists, op, msgEmailExists)
	}
	acc := &user.Account{User: profile}
	acc.ID = uuid.NewString()
	acc.Email = email
	if err := acc.SetPassword(pwd); err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}
	t.table[email] = acc
	return acc.User, nil
}

func (t *identityTable) verify(op, email, pwd string) (user.User, error) {
	t.RLock()
	defer t.RUnlock()

	acc, ok := t.table[core.CleanString(email, true /* lower */)]
	if !ok || acc.CheckPassword(pwd) != nil {
		return user.User{}, core.E(core.KindAuth, op, msgInvalidCredentials)
	}
	return acc.User, nil
}

type identityStore struct {
	db *identityTable
}

var _ user.IdentityStore = (*identityStore)(nil) // interface compliance check

// NewIdentityStore returns the demo identity store, which keeps full profiles next to the
// password hashes. The demo accounts are seeded.
func NewIdentityStore(db *DB) (user.IdentityStore, error) {
	if err := SeedDemoAccounts(db); err != nil {
		return nil, err
	}
	return &identityStore{db: db.identities}, nil
}

func (s *identityStore) Register(ctx context.Context, email, password string, profile user.User) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if profile.Role == "" {
		profile.Role = user.RoleStudent
	}
	return s.db.create("dummydb.Register", email, password, profile)
}

func (s *identityStore) FindByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	s.db.RLock()
	defer s.db.RUnlock()

	if acc, ok := s.db.table[core.CleanString(email, true /* lower */)]; ok {
		return acc.User, nil
	}
	return user.User{}, core.E(core.KindNotFound, "dummydb.FindByEmail", "user not found")
}

func (s *identityStore) Verify(ctx context.Context, email, password string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	return s.db.verify("dummydb.Verify", email, password)
}

func (s *identityStore) UpdateProfile(ctx context.Context, usr user.User) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	s.db.Lock()
	defer s.db.Unlock()

	for _, acc := range s.db.table {
		if acc.ID == usr.ID {
			// identity fields are not editable
			usr.Email = acc.Email
			usr.Role = acc.Role
			acc.User = usr
			return usr, nil
		}
	}
	return user.User{}, core.E(core.KindNotFound, "dummydb.UpdateProfile", "user not found")
}

func (s *identityStore) SignOut(context.Context) error {
	return nil
}

type identityProvider struct {
	db *identityTable
}

var _ core.IdentityProvider = (*identityProvider)(nil) // interface compliance check

// NewIdentityProvider returns an email/password provider over the same accounts as the
// demo identity store. It keeps no profile data.
func NewIdentityProvider(db *DB) core.IdentityProvider {
	return &identityProvider{db: db.identities}
}

func (p *identityProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	usr, err := p.db.create("dummydb.SignUp", email, password, user.User{})
	if err != nil {
		return "", err
	}
	return usr.ID, nil
}

func (p *identityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	usr, err := p.db.verify("dummydb.SignIn", email, password)
	if err != nil {
		return "", err
	}
	return usr.ID, nil
}

func (p *identityProvider) SignOut(context.Context) error {
	return nil
}
