package contentadmin

import (
	"context"
	"fmt"
	"time"
)

// Service is the write orchestrator for the admin API. Every method assumes
// the caller has already been authorized; transport-level auth short-circuits
// before reaching it.
type Service interface {
	// Post operations
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	UpdatePost(ctx context.Context, slug string, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, slug string) error

	// Module operations
	CreateModule(ctx context.Context, req CreateModuleRequest) (*Module, error)
	UpdateModule(ctx context.Context, slug string, req UpdateModuleRequest) (*Module, error)
	DeleteModule(ctx context.Context, slug string) error

	// IssueUploadURL derives the canonical object key for an asset and
	// returns a short-lived pre-signed PUT URL for it. Does not touch the
	// document store.
	IssueUploadURL(ctx context.Context, req UploadURLRequest) (*UploadURL, error)
}

// DefaultUploadExpiry is how long issued upload URLs stay valid.
const DefaultUploadExpiry = 5 * time.Minute

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the document-store repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the object-store backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithEventSink sets the audit event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithUploadExpiry sets the advertised lifetime of issued upload URLs. It
// must match the presign duration the blob store is configured with.
func WithUploadExpiry(d time.Duration) Option {
	return func(s *service) {
		s.uploadExpiry = d
	}
}

// New creates a new service instance with the given options. A repository
// and a blob store are required.
func New(options ...Option) (Service, error) {
	s := &service{
		uploadExpiry: DefaultUploadExpiry,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}

	return s, nil
}
