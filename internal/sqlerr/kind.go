package sqlerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
)

// Kind is the failure taxonomy of the persistence layer.
type Kind int

const (
	// KindConnection: store unreachable, credentials rejected, or a round
	// trip timed out.
	KindConnection Kind = iota + 1
	// KindSchema: table creation failed for a reason other than the table
	// already existing.
	KindSchema
	// KindIntegrity: a constraint or data rule rejected an insert.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection error"
	case KindSchema:
		return "schema error"
	case KindIntegrity:
		return "integrity error"
	default:
		return "unknown error"
	}
}

// OpError is the error returned by every persistence operation.
//
// Op names the operation ("employees.create"), Kind classifies it, and Err is
// the underlying driver error, reachable through errors.As / errors.Is.
type OpError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline expiring.
func (e *OpError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded) || pgconn.Timeout(e.Err)
}

// Connection wraps err as a connection failure of op.
func Connection(op string, err error) error {
	return newOpError(KindConnection, op, err)
}

// Schema wraps err as a schema failure of op.
func Schema(op string, err error) error {
	return newOpError(KindSchema, op, err)
}

// Integrity wraps err as an integrity failure of op.
func Integrity(op string, err error) error {
	return newOpError(KindIntegrity, op, err)
}

// newOpError records the caller's stack on err so the error handler can log
// it with zerolog's Stack().
func newOpError(kind Kind, op string, err error) *OpError {
	return &OpError{Kind: kind, Op: op, Err: pkgerrors.WithStack(err)}
}

// Classify wraps a raw store error into an *OpError.
//
// Errors that are already classified pass through unchanged. Postgres errors
// in the data exception (22) and integrity constraint (23) classes are
// integrity failures. Everything else that comes back from the store,
// including timeouts and cancellations, is a connection failure: the core does
// not try to tell transient from permanent failures.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && isIntegrityClass(pgErr) {
		return Integrity(op, err)
	}

	return Connection(op, err)
}

// isIntegrityClass reports whether pgErr is a data exception (22) or an
// integrity constraint violation (23).
func isIntegrityClass(pgErr *pgconn.PgError) bool {
	switch pgErrorClass(pgErr) {
	case "22", "23":
		return true
	}
	return false
}

// KindOf returns the Kind of err, or 0 when err is not an *OpError.
func KindOf(err error) Kind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return 0
}

func IsConnection(err error) bool { return KindOf(err) == KindConnection }

func IsSchema(err error) bool { return KindOf(err) == KindSchema }

func IsIntegrity(err error) bool { return KindOf(err) == KindIntegrity }

// IsAlreadyExists reports whether err is Postgres saying the table being
// created already exists. CREATE TABLE IF NOT EXISTS can still raise this
// when two sessions race: either 42P07 or a unique violation on the
// pg_type catalog index.
func IsAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch MapCode(pgErr.Code) {
	case DuplicateTable:
		return true
	case UniqueViolation:
		return pgErr.ConstraintName == "pg_type_typname_nsp_index"
	}
	return false
}
