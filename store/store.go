// Package store keeps serialized extension model documents by extension
// name.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Store defines the interface for all document backends
type Store interface {
	// Get retrieves the document stored under name
	Get(ctx context.Context, name string) ([]byte, error)

	// Put stores a document under name, replacing any previous one
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a document. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order
	List(ctx context.Context) ([]string, error)

	// Exists checks if a document is stored under name
	Exists(ctx context.Context, name string) (bool, error)
}

// ErrNotFound is returned when no document is stored under a name.
var ErrNotFound = errors.New("document not found")

// ErrInvalidName is returned for names that cannot be used as keys.
var ErrInvalidName = errors.New("invalid document name")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks that name is usable as a file name and redis key.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%s: %w", name, ErrNotFound)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
