package core

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies an error for the callers of the data layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindNetwork
	KindAuth
	KindValidation
	KindNotFound
	KindAlreadyExists
	KindStorage
)

var kindNames = map[Kind]string{
	KindInternal:      "internal",
	KindNetwork:       "network",
	KindAuth:          "auth",
	KindValidation:    "validation",
	KindNotFound:      "not_found",
	KindAlreadyExists: "already_exists",
	KindStorage:       "storage",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindInternal]
}

// ParseKind is the inverse of Kind.String; unknown names map to KindInternal.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindInternal
}

// Error is the typed error returned by the public operations of the data layer.
type Error struct {
	Kind Kind
	Op   string // operation, e.g. "bridge.Create"
	Msg  string
	Err  error
}

// E builds an *Error. Args may be a string (message) or an error (cause).
func E(kind Kind, op string, args ...interface{}) error {
	e := &Error{Kind: kind, Op: op}
	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			e.Msg = a
		case error:
			e.Err = a
		}
	}
	return e
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return e.Kind.String() + " error"
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of the outermost *Error (or ValidationError) in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return KindValidation
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the human message of err: the Msg of the outermost *Error if set,
// the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return err.Error()
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error {
	return err.Err
}
