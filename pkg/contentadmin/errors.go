package contentadmin

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnauthorized indicates a missing, malformed, unsigned, or expired credential
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a valid credential whose identity is not the configured admin
	ErrForbidden = errors.New("forbidden")

	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrModuleNotFound indicates a module was not found
	ErrModuleNotFound = errors.New("module not found")

	// ErrProblemNotFound indicates a problem was not found within its module
	ErrProblemNotFound = errors.New("problem not found")

	// ErrSlugExists indicates a create collided with an existing slug
	ErrSlugExists = errors.New("slug already exists")

	// ErrInvalidPayload indicates a payload failed validation
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidContentType indicates a content type outside the upload allowlist
	ErrInvalidContentType = errors.New("unsupported content type")

	// ErrInvalidEntityType indicates an unknown content collection
	ErrInvalidEntityType = errors.New("unknown entity type")

	// ErrInvalidLocation indicates an object key outside the owner's derived prefix
	ErrInvalidLocation = errors.New("object key outside owner prefix")

	// ErrStoreUnavailable indicates a transient document-store failure
	ErrStoreUnavailable = errors.New("content store unavailable")
)

// EntityError represents an error from an entity-level write operation
type EntityError struct {
	Kind EntityType
	Slug string
	Op   string
	Err  error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s operation %s failed for slug %q: %v", e.Kind, e.Op, e.Slug, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// StorageError represents an error from an object-store operation
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
