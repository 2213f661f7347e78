package user

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
)

// IdentityStore registers and authenticates users and keeps their profiles.
//
// Verify fails with core.KindAuth when the email is unknown or the password is wrong.
// Register fails with core.KindAlreadyExists when the email is taken.
type IdentityStore interface {
	Register(ctx context.Context, email, password string, profile User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Verify(ctx context.Context, email, password string) (User, error)
	UpdateProfile(ctx context.Context, usr User) (User, error)
	SignOut(ctx context.Context) error
}

type remoteIdentityStore struct {
	idp  core.IdentityProvider
	docs core.DocumentStore

	mu      sync.Mutex
	pending map[string]User // profiles whose write failed, by uid
}

var _ IdentityStore = (*remoteIdentityStore)(nil)

// NewRemoteIdentityStore joins the identity provider's accounts to their `users/{uid}` profile documents.
func NewRemoteIdentityStore(idp core.IdentityProvider, docs core.DocumentStore) IdentityStore {
	return &remoteIdentityStore{idp: idp, docs: docs, pending: make(map[string]User)}
}

// Register signs the account up and writes its profile. An account left without a profile
// by an earlier failed write is completed when registered again with the same password.
func (s *remoteIdentityStore) Register(ctx context.Context, email, password string, profile User) (User, error) {
	uid, err := s.idp.SignUp(ctx, email, password)
	if core.IsKind(err, core.KindAlreadyExists) {
		return s.completeRegistration(ctx, email, password, profile, err)
	}
	if err != nil {
		return User{}, err
	}
	return s.saveProfile(ctx, uid, email, profile)
}

func (s *remoteIdentityStore) saveProfile(ctx context.Context, uid, email string, profile User) (User, error) {
	const op = "user.remote.saveProfile"
	profile.ID = uid
	profile.Email = email
	if profile.Role == "" {
		profile.Role = RoleStudent
	}
	data, err := core.EncodeData(profile)
	if err != nil {
		return User{}, core.E(core.KindInternal, op, err)
	}
	if _, err = s.docs.Set(ctx, core.UsersCollection, uid, data); err != nil {
		s.mu.Lock()
		s.pending[uid] = profile
		s.mu.Unlock()
		return User{}, errors.Wrap(err, "saving user profile")
	}
	s.mu.Lock()
	delete(s.pending, uid)
	s.mu.Unlock()
	return profile, nil
}

// completeRegistration writes the profile of an existing account that has none. Any other
// case keeps the original sign-up error.
func (s *remoteIdentityStore) completeRegistration(ctx context.Context, email, password string, profile User, signUpErr error) (User, error) {
	uid, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		return User{}, signUpErr
	}
	if _, err = s.docs.Get(ctx, core.UsersCollection, uid); !core.IsKind(err, core.KindNotFound) {
		_ = s.idp.SignOut(ctx)
		return User{}, signUpErr
	}
	return s.saveProfile(ctx, uid, email, profile)
}

func (s *remoteIdentityStore) FindByEmail(ctx context.Context, email string) (User, error) {
	const op = "user.remote.FindByEmail"
	docs, err := s.docs.List(ctx, core.UsersCollection)
	if err != nil {
		return User{}, errors.Wrap(err, "listing user profiles")
	}
	email = core.CleanString(email, true /* lower */)
	for _, doc := range docs {
		var usr User
		if err := doc.Decode(&usr); err != nil {
			return User{}, core.E(core.KindInternal, op, err)
		}
		if strings.EqualFold(usr.Email, email) {
			return usr, nil
		}
	}
	return User{}, core.E(core.KindNotFound, op, "user not found")
}

func (s *remoteIdentityStore) Verify(ctx context.Context, email, password string) (User, error) {
	uid, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	usr, err := s.profile(ctx, uid)
	if core.IsKind(err, core.KindNotFound) {
		s.mu.Lock()
		profile, ok := s.pending[uid]
		s.mu.Unlock()
		if ok {
			return s.saveProfile(ctx, uid, profile.Email, profile)
		}
	}
	return usr, err
}

func (s *remoteIdentityStore) profile(ctx context.Context, uid string) (User, error) {
	const op = "user.remote.profile"
	doc, err := s.docs.Get(ctx, core.UsersCollection, uid)
	if err != nil {
		if core.IsKind(err, core.KindNotFound) {
			return User{}, core.E(core.KindNotFound, op, "user profile not found", err)
		}
		return User{}, err
	}
	var usr User
	if err := doc.Decode(&usr); err != nil {
		return User{}, core.E(core.KindInternal, op, err)
	}
	return usr, nil
}

func (s *remoteIdentityStore) UpdateProfile(ctx context.Context, usr User) (User, error) {
	const op = "user.remote.UpdateProfile"
	data, err := core.EncodeData(usr)
	if err != nil {
		return User{}, core.E(core.KindInternal, op, err)
	}
	doc, err := s.docs.Set(ctx, core.UsersCollection, usr.ID, data)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user profile")
	}
	var updated User
	if err := doc.Decode(&updated); err != nil {
		return User{}, core.E(core.KindInternal, op, err)
	}
	return updated, nil
}

func (s *remoteIdentityStore) SignOut(ctx context.Context) error {
	return s.idp.SignOut(ctx)
}
