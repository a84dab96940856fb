package gateway

import (
	"errors"
)

// AuthError covers bad credentials and missing sessions.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// DataError covers query/mutation failures, including not-found.
type DataError struct {
	Message  string
	NotFound bool
	Err      error
}

func (e *DataError) Error() string { return e.Message }
func (e *DataError) Unwrap() error { return e.Err }

// StorageError covers upload rejections and missing buckets.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string { return e.Message }
func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError never reaches the network; the view layer resolves
// it locally.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func authErr(msg string, err error) error {
	return &AuthError{Message: msg, Err: err}
}

func dataErr(msg string, err error) error {
	return &DataError{Message: msg, Err: err}
}

func notFoundErr(msg string) error {
	return &DataError{Message: msg, NotFound: true}
}

func storageErr(msg string, err error) error {
	return &StorageError{Message: msg, Err: err}
}

// IsNotFound reports whether err is a not-found flavored DataError.
func IsNotFound(err error) bool {
	var de *DataError
	return errors.As(err, &de) && de.NotFound
}
