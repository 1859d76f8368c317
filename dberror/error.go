package dberror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaNotFound is returned when a schema file is missing or cannot be decoded.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrDatabaseNotFound is returned when a database directory does not exist.
	ErrDatabaseNotFound = errors.New("database not found")

	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrInvalidColumn is returned for column definitions whose width does not
	// match their kind, or for alterations that would leave a table empty.
	ErrInvalidColumn = errors.New("invalid column definition")

	ErrConstraintViolation = errors.New("constraint violation")
	ErrEncoding            = errors.New("encoding error")
	ErrAlreadyExists       = errors.New("already exists")
	ErrIO                  = errors.New("io error")
	ErrInvalidCondition    = errors.New("invalid condition")
	ErrInvalidName         = errors.New("invalid name")
	ErrPermission          = errors.New("permission denied")

	// ErrSyntax is returned for statements the parser does not understand.
	ErrSyntax = errors.New("syntax error")
)

// Error carries the kind of a failure together with the operation and table
// it happened in.
type Error struct {
	// Op is the engine operation, e.g. "insert" or "add_columns".
	Op string
	// Table is empty for database-level operations.
	Table string
	// Kind is one of the sentinel errors of this package.
	Kind error
	// Detail is a human readable description of this instance.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

// New builds an Error of the given kind with a formatted detail message.
func New(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an existing error. A nil err yields nil.
// If err already is an *Error its kind is kept and only missing context is filled in.
func Wrap(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		return e
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// WithTable sets the table name and returns the receiver.
func (e *Error) WithTable(table string) *Error {
	e.Table = table
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Table != "" {
		fmt.Fprintf(&b, "table '%s': ", e.Table)
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the sentinel kind of err, or nil when err was not produced by this package.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
