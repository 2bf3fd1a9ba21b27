// Package memory provides an in-memory contentadmin.BlobStore used by tests
// and local development. It records every issued upload URL and delete call
// and can inject per-key delete failures.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

// Backend is an in-memory implementation of the contentadmin.BlobStore
// interface.
type Backend struct {
	mu        sync.Mutex
	presigned []string
	deleted   []string
	failKeys  map[string]error
}

var _ contentadmin.BlobStore = (*Backend)(nil)

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		failKeys: make(map[string]error),
	}
}

// GetUploadURL returns a fake URL for the object key.
func (b *Backend) GetUploadURL(ctx context.Context, objectKey, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.presigned = append(b.presigned, objectKey)
	return fmt.Sprintf("memory://upload/%s", objectKey), nil
}

// DeleteObjects records each delete, returning the configured failure for
// any key registered with FailDelete. Keys without a configured failure are
// still deleted.
func (b *Backend) DeleteObjects(ctx context.Context, objectKeys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, key := range objectKeys {
		if err, ok := b.failKeys[key]; ok {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
			continue
		}
		b.deleted = append(b.deleted, key)
	}

	return errors.Join(errs...)
}

// FailDelete makes future deletes of key fail with err.
func (b *Backend) FailDelete(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failKeys[key] = err
}

// DeletedKeys returns every key deleted so far, in call order.
func (b *Backend) DeletedKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.deleted)
}

// PresignedKeys returns every key an upload URL was issued for.
func (b *Backend) PresignedKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.presigned)
}
