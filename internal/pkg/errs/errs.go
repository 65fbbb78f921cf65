package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrConflict          = errors.New("conflict")
	ErrExhausted         = errors.New("dispatch attempts exhausted")
	ErrRecordsSkipped    = errors.New("stored records skipped")
)

// ObjectNotFoundError reports a lookup by ID that matched nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
	}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a malformed input value.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
	}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
		Cause:     cause,
	}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid,
		sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ConflictError reports an optimistic update that lost to a concurrent writer,
// or an entity that is no longer in the state the caller expected.
type ConflictError struct {
	Entity string
	ID     any
	Reason string
}

func NewConflictError(entity string, id any, reason string) *ConflictError {
	return &ConflictError{
		Entity: entity,
		ID:     id,
		Reason: reason,
	}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrConflict, e.Entity, sanitize(e.ID), e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// ExhaustionError reports an order that ran out of offer attempts.
type ExhaustionError struct {
	OrderID  any
	Attempts int
}

func NewExhaustionError(orderID any, attempts int) *ExhaustionError {
	return &ExhaustionError{
		OrderID:  orderID,
		Attempts: attempts,
	}
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("%s: order %s after %d attempts", ErrExhausted, sanitize(e.OrderID), e.Attempts)
}

func (e *ExhaustionError) Unwrap() error {
	return ErrExhausted
}

// SkippedRecordsError reports stored rows a listing could not restore. The
// listing still returns every row it could restore.
type SkippedRecordsError struct {
	Entity string
	IDs    []string
	Cause  error
}

func NewSkippedRecordsError(entity string, ids []string, cause error) *SkippedRecordsError {
	return &SkippedRecordsError{
		Entity: entity,
		IDs:    ids,
		Cause:  cause,
	}
}

func (e *SkippedRecordsError) Error() string {
	return fmt.Sprintf("%s: %d %s rows [%s] (cause: %v)",
		ErrRecordsSkipped, len(e.IDs), e.Entity, strings.Join(e.IDs, ", "), sanitize(e.Cause))
}

func (e *SkippedRecordsError) Unwrap() error {
	return ErrRecordsSkipped
}

func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}
