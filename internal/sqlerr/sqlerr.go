// Package sqlerr classifies database driver errors.
//
// It turns raw pgx/Postgres failures into the three failure kinds the
// persistence layer reports (connection, schema, integrity), and converts
// those into user-friendly HTTP errors at the edge.
package sqlerr

import (
	"github.com/jackc/pgx/v5/pgconn"
)

// Code is a friendly name for the SQLSTATE values this service cares about.
type Code string

const (
	Other                     Code = "other"
	UniqueViolation           Code = "unique_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	NotNullViolation          Code = "not_null_violation"
	CheckViolation            Code = "check_violation"
	StringDataRightTruncation Code = "string_data_right_truncation"
	NumericValueOutOfRange    Code = "numeric_value_out_of_range"
	DuplicateTable            Code = "duplicate_table"
	InsufficientPrivilege     Code = "insufficient_privilege"
	InvalidAuthorization      Code = "invalid_authorization_specification"
	InvalidPassword           Code = "invalid_password"
	ConnectionException       Code = "connection_exception"
	QueryCanceled             Code = "query_canceled"
	AdminShutdown             Code = "admin_shutdown"
	TooManyConnections        Code = "too_many_connections"
)

// MapCode maps a SQLSTATE onto a Code. Unlisted states in the connection
// exception class (08) collapse to ConnectionException.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	case "22001":
		return StringDataRightTruncation
	case "22003":
		return NumericValueOutOfRange
	case "42P07":
		return DuplicateTable
	case "42501":
		return InsufficientPrivilege
	case "28000":
		return InvalidAuthorization
	case "28P01":
		return InvalidPassword
	case "57014":
		return QueryCanceled
	case "57P01":
		return AdminShutdown
	case "53300":
		return TooManyConnections
	}

	if class(sqlState) == "08" {
		return ConnectionException
	}
	return Other
}

// Severity mirrors the Postgres severity field.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity maps the severity string reported by Postgres.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice,
		SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}

// Error is a structured view of a *pgconn.PgError.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return e.Severity.String() + ": " + e.Message + " (SQLSTATE " + e.DatabaseCode + ")"
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

func (s Severity) String() string {
	return string(s)
}

// class returns the two-character SQLSTATE class.
func class(sqlState string) string {
	if len(sqlState) < 2 {
		return ""
	}
	return sqlState[:2]
}

// pgErrorClass reports the SQLSTATE class of a *pgconn.PgError, or "".
func pgErrorClass(err *pgconn.PgError) string {
	if err == nil {
		return ""
	}
	return class(err.Code)
}
