package library

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUniqueViolation    = errors.New("already exists")
	ErrInsufficientCopies = errors.New("no copies available")
	ErrAlreadyReturned    = errors.New("already returned")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPersistence        = errors.New("persistence failure")
	ErrCorruptStore       = errors.New("corrupt store")
	ErrSchemaTooNew       = errors.New("schema version newer than code")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// OpError ties a failure to the operation that produced it. It unwraps to
// both its kind sentinel and the underlying cause.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func opErr(op string, kind error, format string, args ...any) error {
	return &OpError{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// classify turns a raw database error into an OpError of the right kind.
// Errors that already carry a kind pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &OpError{Op: op, Kind: ErrNotFound}
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch {
		case se.ExtendedCode == sqlite3.ErrConstraintUnique,
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return &OpError{Op: op, Kind: ErrUniqueViolation, Err: err}
		case se.ExtendedCode == sqlite3.ErrConstraintCheck,
			se.ExtendedCode == sqlite3.ErrConstraintNotNull:
			return &OpError{Op: op, Kind: ErrInvalidInput, Err: err}
		case se.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			return &OpError{Op: op, Kind: ErrNotFound, Err: err}
		case se.Code == sqlite3.ErrNotADB, se.Code == sqlite3.ErrCorrupt:
			return &OpError{Op: op, Kind: ErrCorruptStore, Err: err}
		}
	}
	return &OpError{Op: op, Kind: ErrPersistence, Err: err}
}

// ErrorKind names a failure category surfaced to callers.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFoundError"
	KindUniqueViolation    ErrorKind = "UniquenessViolation"
	KindInsufficientCopies ErrorKind = "InsufficientCopiesError"
	KindAlreadyReturned    ErrorKind = "AlreadyReturnedError"
	KindValidation         ErrorKind = "ValidationError"
	KindPersistence        ErrorKind = "PersistenceError"
	KindCorruptStore       ErrorKind = "CorruptStoreError"
	KindAuthentication     ErrorKind = "AuthenticationError"
	KindInternal           ErrorKind = "InternalError"
)

// Failure is the structured error shape handed to the presentation layer.
type Failure struct {
	Kind    ErrorKind `json:"errorKind"`
	Message string    `json:"message"`
}

func (f *Failure) Error() string { return f.Message }

// Describe maps any error from this package to a short, readable Failure.
// It returns nil for a nil error.
func Describe(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return &Failure{Kind: KindNotFound, Message: "The requested record does not exist."}
	case errors.Is(err, ErrUniqueViolation):
		return &Failure{Kind: KindUniqueViolation, Message: "A record with the same " + uniqueField(err) + " already exists."}
	case errors.Is(err, ErrInsufficientCopies):
		return &Failure{Kind: KindInsufficientCopies, Message: "No copies of this book are available to borrow."}
	case errors.Is(err, ErrAlreadyReturned):
		return &Failure{Kind: KindAlreadyReturned, Message: "This book has already been returned."}
	case errors.Is(err, ErrInvalidCredentials):
		return &Failure{Kind: KindAuthentication, Message: "Invalid username or password."}
	case errors.Is(err, ErrInvalidInput):
		var oe *OpError
		if errors.As(err, &oe) && oe.Err != nil {
			return &Failure{Kind: KindValidation, Message: "Invalid input: " + oe.Err.Error() + "."}
		}
		return &Failure{Kind: KindValidation, Message: "Invalid input."}
	case errors.Is(err, ErrCorruptStore):
		return &Failure{Kind: KindCorruptStore, Message: "The library data file is damaged and cannot be opened."}
	case errors.Is(err, ErrPersistence), errors.Is(err, ErrSchemaTooNew):
		return &Failure{Kind: KindPersistence, Message: "The library data could not be saved or read. Please try again."}
	}
	return &Failure{Kind: KindInternal, Message: "Something went wrong."}
}

// uniqueField extracts the column name from a SQLite UNIQUE constraint
// message such as "UNIQUE constraint failed: books.isbn".
func uniqueField(err error) string {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return "key"
	}
	msg := se.Error()
	for i := len(msg) - 1; i >= 0; i-- {
		if msg[i] == '.' {
			return msg[i+1:]
		}
		if msg[i] == ' ' || msg[i] == ':' {
			break
		}
	}
	return "key"
}
