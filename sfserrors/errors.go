package sfserrors

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is the error type returned by internal sfscore components.
// It behaves like a normal error but lets callers chain additional context
// onto a sentinel (see [SfsError]). WithMessage keeps errors.Is matching the
// sentinel; WrapError unwraps to the wrapped error instead.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	WrapError(err error) DriverError
}

type customError struct {
	message       string
	originalError error
}

func (e customError) Error() string {
	return e.message
}

func (e customError) WithMessage(message string) DriverError {
	return customError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customError) WrapError(err error) DriverError {
	return customError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}

func (e customError) Unwrap() error {
	return e.originalError
}

// AppendFlush collects an error from one of the regions a Flush writes
// (bitmap, super block, directory, inode table) without short-circuiting
// the others. Pass the running accumulator (possibly nil) and get back the
// updated one; a nil return means nothing has failed yet.
func AppendFlush(acc error, region string, err error) error {
	if err == nil {
		return acc
	}
	return multierror.Append(acc, fmt.Errorf("flush %s: %w", region, err))
}
