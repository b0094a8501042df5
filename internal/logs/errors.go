package logs

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneric is returned for failures that fit no other category
	ErrGeneric = errors.New("logger error")
	// ErrBadArguments is returned when an argument is rejected, e.g. removing a protected logger
	ErrBadArguments = errors.New("bad arguments")
	// ErrNotFound is returned when a path is not registered
	ErrNotFound = errors.New("logger not found")
	// ErrCreate is returned when a logger instance could not be created
	ErrCreate = errors.New("failed to create logger")
	// ErrFileAccess is returned when opening, seeking, renaming or removing a file fails
	ErrFileAccess = errors.New("file access failed")
)

// FileError describes a failed file operation on a log file
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is reports ErrFileAccess for every FileError
func (e *FileError) Is(target error) bool {
	return target == ErrFileAccess
}

func fileError(op, path string, err error) error {
	return &FileError{Op: op, Path: path, Err: err}
}
