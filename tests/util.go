package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/campus"
	"github.com/trezcool/campuscopilot/core/user"
)

// Entry is a logged message.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records log entries so tests can assert on them.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Messages returns the messages logged at level.
func (l *Logger) Messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var msgs []string
	for _, e := range l.entries {
		if e.Level == level {
			msgs = append(msgs, e.Msg)
		}
	}
	return msgs
}

// NewValidator returns a validator with every package's validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	campus.InitValidators(validate, translator)
	return validate, translator
}

// RegisterUser registers an account in store and fails the test on error.
func RegisterUser(t *testing.T, store user.IdentityStore, name, email, pwd, role string) user.User {
	t.Helper()
	usr, err := store.Register(context.Background(), email, pwd, user.User{
		Name:        name,
		Email:       email,
		Institution: "Tech University",
		Year:        2,
		Role:        role,
		Department:  "Computer Science",
	})
	if err != nil {
		t.Fatalf("RegisterUser() failed: %v", err)
	}
	return usr
}

// NewUserForm returns a valid registration form.
func NewUserForm(name, email, pwd string) user.NewUser {
	return user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		College:         "Tech University",
		Year:            1,
		Role:            user.RoleStudent,
		Department:      "Mathematics",
		StudentID:       fmt.Sprintf("MA%04d", len(name)),
	}
}
