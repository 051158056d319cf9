// Package errs defines the error taxonomy shared by the query engine.
//
// Every failure the engine detects is returned as an *Error carrying a Code.
// Callers branch on the code with the IsXxx helpers or with errors.Is against
// the exported sentinels; both see through fmt.Errorf wrapping.
package errs

import (
	"errors"
	"fmt"
)

// Code categorizes engine errors.
type Code string

const (
	// CodeAlreadyJoined indicates a table was added to a builder twice.
	CodeAlreadyJoined Code = "ALREADY_JOINED"

	// CodeUnknownRelation indicates no foreign-key relation links the root
	// table to the join target.
	CodeUnknownRelation Code = "UNKNOWN_RELATION"

	// CodeTableNotJoined indicates a filter or order targets a table that is
	// not part of the builder.
	CodeTableNotJoined Code = "TABLE_NOT_JOINED"

	// CodeColumnNotFound indicates a column lookup named an undeclared field.
	CodeColumnNotFound Code = "COLUMN_NOT_FOUND"

	// CodeMissingPrimaryKey indicates a primary-key operation on a table
	// that declares none, or a value set without the key.
	CodeMissingPrimaryKey Code = "MISSING_PRIMARY_KEY"

	// CodeDriverError wraps a failure surfaced by the database driver.
	CodeDriverError Code = "DRIVER_ERROR"

	// CodeDecodeError indicates a column value could not be converted to the
	// declared scalar kind.
	CodeDecodeError Code = "DECODE_ERROR"

	// CodeInvalidSchema indicates a schema declaration failed validation.
	CodeInvalidSchema Code = "INVALID_SCHEMA"
)

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrAlreadyJoined     = &Error{Code: CodeAlreadyJoined}
	ErrUnknownRelation   = &Error{Code: CodeUnknownRelation}
	ErrTableNotJoined    = &Error{Code: CodeTableNotJoined}
	ErrColumnNotFound    = &Error{Code: CodeColumnNotFound}
	ErrMissingPrimaryKey = &Error{Code: CodeMissingPrimaryKey}
	ErrDriver            = &Error{Code: CodeDriverError}
	ErrDecode            = &Error{Code: CodeDecodeError}
	ErrInvalidSchema     = &Error{Code: CodeInvalidSchema}
)

// Error is the single error type returned by the engine.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Table names the affected table, if any.
	Table string

	// Column names the affected column, if any.
	Column string

	// Err is the underlying cause (driver or conversion failure).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func hasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsAlreadyJoined returns true if err is an ALREADY_JOINED error.
func IsAlreadyJoined(err error) bool { return hasCode(err, CodeAlreadyJoined) }

// IsUnknownRelation returns true if err is an UNKNOWN_RELATION error.
func IsUnknownRelation(err error) bool { return hasCode(err, CodeUnknownRelation) }

// IsTableNotJoined returns true if err is a TABLE_NOT_JOINED error.
func IsTableNotJoined(err error) bool { return hasCode(err, CodeTableNotJoined) }

// IsColumnNotFound returns true if err is a COLUMN_NOT_FOUND error.
func IsColumnNotFound(err error) bool { return hasCode(err, CodeColumnNotFound) }

// IsMissingPrimaryKey returns true if err is a MISSING_PRIMARY_KEY error.
func IsMissingPrimaryKey(err error) bool { return hasCode(err, CodeMissingPrimaryKey) }

// IsDriverError returns true if err is a DRIVER_ERROR error.
func IsDriverError(err error) bool { return hasCode(err, CodeDriverError) }

// IsDecodeError returns true if err is a DECODE_ERROR error.
func IsDecodeError(err error) bool { return hasCode(err, CodeDecodeError) }

// IsInvalidSchema returns true if err is an INVALID_SCHEMA error.
func IsInvalidSchema(err error) bool { return hasCode(err, CodeInvalidSchema) }

// NewAlreadyJoined creates an error for a table registered twice.
func NewAlreadyJoined(table string) *Error {
	return &Error{
		Code:    CodeAlreadyJoined,
		Message: fmt.Sprintf("table %s already joined", table),
		Table:   table,
	}
}

// NewUnknownRelation creates an error for a join target with no declared relation.
func NewUnknownRelation(root, target string) *Error {
	return &Error{
		Code:    CodeUnknownRelation,
		Message: fmt.Sprintf("no relation declared between %s and %s", root, target),
		Table:   target,
	}
}

// NewTableNotJoined creates an error for a filter or order on an absent table.
func NewTableNotJoined(table, op string) *Error {
	return &Error{
		Code:    CodeTableNotJoined,
		Message: fmt.Sprintf("%s applies to table %s which is not in this builder", op, table),
		Table:   table,
	}
}

// NewColumnNotFound creates an error for an undeclared column.
func NewColumnNotFound(table, column string) *Error {
	return &Error{
		Code:    CodeColumnNotFound,
		Message: fmt.Sprintf("column %s not found in %s", column, table),
		Table:   table,
		Column:  column,
	}
}

// NewMissingPrimaryKey creates an error for primary-key operations without a key.
func NewMissingPrimaryKey(table, detail string) *Error {
	msg := fmt.Sprintf("table %s has no primary key", table)
	if detail != "" {
		msg = fmt.Sprintf("table %s: %s", table, detail)
	}
	return &Error{
		Code:    CodeMissingPrimaryKey,
		Message: msg,
		Table:   table,
	}
}

// NewDecodeError creates an error for a column value that failed conversion.
func NewDecodeError(column string, err error) *Error {
	return &Error{
		Code:    CodeDecodeError,
		Message: fmt.Sprintf("decode column %s", column),
		Column:  column,
		Err:     err,
	}
}

// NewInvalidSchema creates an error for a failed schema validation.
func NewInvalidSchema(err error) *Error {
	return &Error{
		Code:    CodeInvalidSchema,
		Message: "schema validation failed",
		Err:     err,
	}
}

// WrapDriver wraps a driver failure for operation op. Errors that already
// carry a code pass through unchanged, so a failure is wrapped exactly once.
func WrapDriver(op string, err error) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	return &Error{
		Code:    CodeDriverError,
		Message: op,
		Err:     err,
	}
}
