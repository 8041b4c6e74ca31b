package domain

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when a message is sent before any conversation
// has been bootstrapped.
var ErrNoSession = errors.New("no active session")

// UploadError means the remote upload of a document exhausted its retry
// budget. Fatal for the processing action that triggered it.
type UploadError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// FetchError means a reference document could not be downloaded or uploaded.
// Non-fatal: the pipeline proceeds without the reference.
type FetchError struct {
	Kind ReferenceKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch of reference %s failed: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SessionError means a bootstrap or send failed against an absent or broken
// remote conversation. Prior transcript state is left untouched.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s failed: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// StorageError wraps history read/write failures.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
