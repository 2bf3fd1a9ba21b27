package contentadmin

import (
	"context"
)

// Repository defines the interface for document-store persistence.
//
// Get* return the package-level not-found sentinels when a record is absent.
// Put* are unconditional upserts. Delete* are idempotent and succeed when the
// record is already gone. Transient store failures wrap ErrStoreUnavailable.
type Repository interface {
	// Post operations
	GetPost(ctx context.Context, slug string) (*Post, error)
	PutPost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, slug string) error

	// Module operations
	GetModule(ctx context.Context, slug string) (*Module, error)
	PutModule(ctx context.Context, module *Module) error
	DeleteModule(ctx context.Context, slug string) error

	// Problem operations, keyed by owning module slug
	GetProblem(ctx context.Context, moduleSlug, problemID string) (*Problem, error)
	PutProblem(ctx context.Context, moduleSlug string, problem *Problem) error
	DeleteProblem(ctx context.Context, moduleSlug, problemID string) error

	// ListProblems returns all problems under a module, in no guaranteed
	// order. Used only for cascade delete; listing for readers is out of
	// scope.
	ListProblems(ctx context.Context, moduleSlug string) ([]*Problem, error)

	// DeleteProblems removes every problem record under a module.
	DeleteProblems(ctx context.Context, moduleSlug string) error
}

// BlobStore defines the interface for object-store backends
type BlobStore interface {
	// GetUploadURL returns a pre-signed URL for uploading an object. The
	// URL is bound to the given content type and expires after the
	// backend's configured duration.
	GetUploadURL(ctx context.Context, objectKey, contentType string) (string, error)

	// DeleteObjects deletes the given object keys. Missing keys are not an
	// error. Per-key failures are collected into the returned error; keys
	// that can be deleted still are.
	DeleteObjects(ctx context.Context, objectKeys []string) error
}

// EventSink receives an audit event after each successful mutation. Sink
// failures are logged and never fail the originating write.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}
