package command

import (
	"context"

	"github.com/adlytica/toolkit/internal/pkg/errors"
)

// Result is the two-variant outcome type used for all expected failures.
// Exceptions (panics) are reserved for programming errors.
type Result struct {
	value interface{}
	err   *errors.AppError
}

// Ok creates a success result
func Ok(value interface{}) Result {
	return Result{value: value}
}

// Fail creates a failure result
func Fail(err *errors.AppError) Result {
	return Result{err: err}
}

// IsOk reports whether the result is a success
func (r Result) IsOk() bool {
	return r.err == nil
}

// Value returns the success value; nil for failures
func (r Result) Value() interface{} {
	return r.value
}

// Err returns the failure; nil for successes
func (r Result) Err() *errors.AppError {
	return r.err
}

// Handler executes one toolkit command
type Handler func(ctx context.Context, run *ExecutionContext, params interface{}) Result
