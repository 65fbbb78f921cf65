// Package errs provides standardized error types for the dispatch service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - ObjectNotFoundError: a lookup by ID matched nothing
//   - ConflictError: an optimistic update lost a race or the entity moved on
//   - ExhaustionError: an order ran out of offer attempts
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is classifies it
package errs
