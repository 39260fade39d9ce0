package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by every store implementation. The REST layer maps them to
// status codes with errors.Is, so adapters must wrap rather than replace them.
var (
	// ErrNotFound is wrapped by every per-entity "not found" error below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is wrapped by every uniqueness violation below.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity wraps domain validation failures caught before a write.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed marks a commit failure in RunInTransaction.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrPostNotFound   = fmt.Errorf("%w: post", ErrNotFound)
	ErrTermNotFound   = fmt.Errorf("%w: term", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("%w: user", ErrNotFound)
	ErrOptionNotFound = fmt.Errorf("%w: option", ErrNotFound)

	// ErrSlugExists means a term slug is already used in its taxonomy.
	ErrSlugExists = fmt.Errorf("%w: slug", ErrDuplicate)
	// ErrLoginExists means another user has the same login.
	ErrLoginExists = fmt.Errorf("%w: login", ErrDuplicate)
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
