package domain

import (
	"errors"
	"fmt"
)

// ErrMenuUnavailable means the feed published no menu for the requested
// date. It is not retried; on-demand callers show a single apology line and
// the dispatcher skips the recipient.
var ErrMenuUnavailable = errors.New("no menu published")

// ErrNotFound is returned by store lookups for unknown chats.
var ErrNotFound = errors.New("subscriber not found")

// StorageError wraps a durable-store I/O failure. The store never retries;
// retry policy belongs to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// TransportError classifies a failed message send. Permanent errors
// (blocked bot, deleted account) can never succeed on retry and trigger
// auto-unsubscribe; everything else is transient and retried once.
type TransportError struct {
	Permanent bool
	Err       error
}

func (e *TransportError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("transport (%s): %v", kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsPermanent reports whether err is a permanent transport error.
func IsPermanent(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Permanent
}
