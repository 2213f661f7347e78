package sqldoc

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
	"github.com/trezcool/campuscopilot/storage/database"
)

const identitiesTable = "identities"

var (
	msgEmailExists        = "a user with this email already exists"
	msgInvalidCredentials = "invalid email or password"
)

type identityRow struct {
	UID          string `db:"uid"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

type identityProvider struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

var _ core.IdentityProvider = (*identityProvider)(nil) // interface compliance check

// NewIdentityProvider returns an email/password provider. Profiles are kept elsewhere,
// see user.NewRemoteIdentityStore.
func NewIdentityProvider(db *sqlx.DB, engine string) core.IdentityProvider {
	return &identityProvider{db: db, sb: database.Builder(engine)}
}

func (p *identityProvider) findByEmail(ctx context.Context, q sqlx.QueryerContext, email string) (identityRow, error) {
	query, args, err := p.sb.
		Select("uid", "email", "password_hash", "created_at").
		From(identitiesTable).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return identityRow{}, errors.Wrap(err, "building query")
	}
	var row identityRow
	err = sqlx.GetContext(ctx, q, &row, query, args...)
	return row, err
}

func (p *identityProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	const op = "sqldoc.SignUp"
	email = core.CleanString(email, true /* lower */)

	var acc user.Account
	if err := acc.SetPassword(password); err != nil {
		return "", core.E(core.KindInternal, op, errors.Wrap(err, "hashing password"))
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = p.findByEmail(ctx, tx, email); err == nil {
		return "", core.E(core.KindAlreadyExists, op, msgEmailExists)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", storageErr(op, errors.Wrap(err, "checking email uniqueness"))
	}

	uid := uuid.NewString()
	query, args, err := p.sb.
		Insert(identitiesTable).
		Columns("uid", "email", "password_hash", "created_at").
		Values(uid, email, string(acc.PasswordHash), NowFunc().UnixNano()).
		ToSql()
	if err != nil {
		return "", core.E(core.KindInternal, op, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return "", storageErr(op, errors.Wrap(err, "creating identity"))
	}
	if err = tx.Commit(); err != nil {
		return "", storageErr(op, err)
	}
	return uid, nil
}

func (p *identityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	const op = "sqldoc.SignIn"
	row, err := p.findByEmail(ctx, p.db, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.E(core.KindAuth, op, msgInvalidCredentials)
		}
		return "", storageErr(op, err)
	}
	acc := user.Account{PasswordHash: []byte(row.PasswordHash)}
	if err = acc.CheckPassword(password); err != nil {
		return "", core.E(core.KindAuth, op, msgInvalidCredentials)
	}
	return row.UID, nil
}

// SignOut is a no-op: the provider keeps no session.
func (p *identityProvider) SignOut(context.Context) error {
	return nil
}

// SeedDemoAccounts registers the demo accounts (and their profiles) that do not exist yet.
func SeedDemoAccounts(ctx context.Context, db *sqlx.DB, engine string, docs core.DocumentStore) error {
	p := &identityProvider{db: db, sb: database.Builder(engine)}
	for _, demo := range user.DemoAccounts() {
		_, err := p.findByEmail(ctx, db, demo.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return errors.Wrap(err, "looking up demo account")
		}

		var acc user.Account
		if err = acc.SetPassword(demo.Password); err != nil {
			return errors.Wrap(err, "hashing demo password")
		}
		query, args, err := p.sb.
			Insert(identitiesTable).
			Columns("uid", "email", "password_hash", "created_at").
			Values(demo.ID, demo.Email, string(acc.PasswordHash), NowFunc().UnixNano()).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = db.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "creating demo identity")
		}

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
