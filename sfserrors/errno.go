// Package sfserrors defines the sentinel error values used throughout
// sfscore and the richer [DriverError] interface. WithMessage attaches
// context without losing the ability to compare against the sentinel with
// errors.Is; WrapError instead unwraps to the wrapped error, so errors.Is
// matches that error and not the sentinel.
package sfserrors

import "fmt"

// SfsError is a sentinel error value, comparable with ==  and errors.Is.
type SfsError string

const ErrInvalidArgument = SfsError("invalid argument")
const ErrNameTooLong = SfsError("file name too long")
const ErrNotOpen = SfsError("file descriptor is not open")
const ErrInvalidHandle = SfsError("invalid file descriptor")
const ErrNotFound = SfsError("no such file")
const ErrExists = SfsError("file already exists")
const ErrNoSpaceOnDevice = SfsError("no space left on device")
const ErrTooManyOpenFiles = SfsError("too many open files")
const ErrDirectoryFull = SfsError("root directory is full")
const ErrNoFreeInode = SfsError("no free inode")
const ErrFileTooLarge = SfsError("file too large")
const ErrSeekOutOfRange = SfsError("seek offset out of range")
const ErrIOFailed = SfsError("input/output error")
const ErrAlreadyMounted = SfsError("file system is already mounted")
const ErrNotMounted = SfsError("file system is not mounted")

func (e SfsError) Error() string {
	return string(e)
}

func (e SfsError) WithMessage(message string) DriverError {
	return customError{message: string(e) + ": " + message, originalError: e}
}

func (e SfsError) WrapError(err error) DriverError {
	return customError{
		message:       fmt.Sprintf("%s: %s", string(e), err.Error()),
		originalError: err,
	}
}
