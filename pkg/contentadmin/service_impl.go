package contentadmin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository   Repository
	blobStore    BlobStore
	eventSink    EventSink
	uploadExpiry time.Duration
}

// allowedContentTypes is the upload allowlist: image formats only.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// Post operations

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The repository put is an unconditional upsert, so duplicate slugs
	// have to be caught here.
	if _, err := s.repository.GetPost(ctx, req.Slug); err == nil {
		return nil, &EntityError{Kind: EntityTypeBlog, Slug: req.Slug, Op: "create", Err: ErrSlugExists}
	} else if !errors.Is(err, ErrPostNotFound) {
		return nil, &EntityError{Kind: EntityTypeBlog, Slug: req.Slug, Op: "create", Err: err}
	}

	now := time.Now().UTC()
	post := &Post{
		Slug:      req.Slug,
		Title:     req.Title,
		Date:      req.Date,
		Excerpt:   req.Excerpt,
		Tags:      req.Tags,
		Content:   req.Content,
		Media:     req.Media,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.PutPost(ctx, post); err != nil {
		return nil, &EntityError{Kind: EntityTypeBlog, Slug: post.Slug, Op: "create", Err: err}
	}

	s.publish(ctx, EntityTypeBlog, post.Slug, ActionCreated)
	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, slug string, req UpdatePostRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post, err := s.repository.GetPost(ctx, slug)
	if err != nil {
		return nil, &EntityError{Kind: EntityTypeBlog, Slug: slug, Op: "update", Err: err}
	}

	// A supplied media list replaces the stored one wholesale; whatever it
	// no longer references becomes cleanup work after the record write.
	var orphaned []string
	if req.Media != nil {
		orphaned = OrphanedKeys(post.Media, *req.Media)
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Date != nil {
		post.Date = *req.Date
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Media != nil {
		post.Media = *req.Media
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.repository.PutPost(ctx, post); err != nil {
		return nil, &EntityError{Kind: EntityTypeBlog, Slug: slug, Op: "update", Err: err}
	}

	// The record is already consistent; stray objects are cleanup debt,
	// not a correctness violation.
	s.cleanupObjects(ctx, OwnerPrefix(EntityTypeBlog, slug), orphaned)

	s.publish(ctx, EntityTypeBlog, slug, ActionUpdated)
	return post, nil
}

func (s *service) DeletePost(ctx context.Context, slug string) error {
	post, err := s.repository.GetPost(ctx, slug)
	if err != nil {
		return &EntityError{Kind: EntityTypeBlog, Slug: slug, Op: "delete", Err: err}
	}

	// Assets first, record last: a crash mid-delete leaves a record with
	// stale media references, and re-running the delete is safe.
	s.cleanupObjects(ctx, OwnerPrefix(EntityTypeBlog, slug), MediaKeys(post.Media))

	if err := s.repository.DeletePost(ctx, slug); err != nil {
		return &EntityError{Kind: EntityTypeBlog, Slug: slug, Op: "delete", Err: err}
	}

	s.publish(ctx, EntityTypeBlog, slug, ActionDeleted)
	return nil
}

// Module operations

func (s *service) CreateModule(ctx context.Context, req CreateModuleRequest) (*Module, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repository.GetModule(ctx, req.Slug); err == nil {
		return nil, &EntityError{Kind: EntityTypePlaybook, Slug: req.Slug, Op: "create", Err: ErrSlugExists}
	} else if !errors.Is(err, ErrModuleNotFound) {
		return nil, &EntityError{Kind: EntityTypePlaybook, Slug: req.Slug, Op: "create", Err: err}
	}

	now := time.Now().UTC()
	module := &Module{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Order:       req.Order,
		Media:       req.Media,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repository.PutModule(ctx, module); err != nil {
		return nil, &EntityError{Kind: EntityTypePlaybook, Slug: req.Slug, Op: "create", Err: err}
	}
	for _, p := range req.Problems {
		if err := s.repository.PutProblem(ctx, req.Slug, p.problem(now, now)); err != nil {
			return nil, &EntityError{Kind: EntityTypePlaybook, Slug: req.Slug, Op: "create", Err: err}
		}
	}

	s.publish(ctx, EntityTypePlaybook, module.Slug, ActionCreated)
	return module, nil
}

func (s *service) UpdateModule(ctx context.Context, slug string, req UpdateModuleRequest) (*Module, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	module, err := s.repository.GetModule(ctx, slug)
	if err != nil {
		return nil, &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "update", Err: err}
	}

	now := time.Now().UTC()

	// Problem upserts and removals are applied before the module's own
	// updatedAt is refreshed.
	for _, p := range req.UpsertProblems {
		if err := s.upsertProblem(ctx, slug, p, now); err != nil {
			return nil, &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "update", Err: err}
		}
	}
	for _, id := range req.DeleteProblemIDs {
		if err := s.removeProblem(ctx, slug, id); err != nil {
			return nil, &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "update", Err: err}
		}
	}

	var orphaned []string
	if req.Media != nil {
		orphaned = OrphanedKeys(module.Media, *req.Media)
	}

	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Description != nil {
		module.Description = *req.Description
	}
	if req.Content != nil {
		module.Content = *req.Content
	}
	if req.Order != nil {
		module.Order = *req.Order
	}
	if req.Media != nil {
		module.Media = *req.Media
	}
	module.UpdatedAt = now

	if err := s.repository.PutModule(ctx, module); err != nil {
		return nil, &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "update", Err: err}
	}

	s.cleanupObjects(ctx, OwnerPrefix(EntityTypePlaybook, slug), orphaned)

	s.publish(ctx, EntityTypePlaybook, slug, ActionUpdated)
	return module, nil
}

// upsertProblem replaces the stored problem wholesale, keeping only the
// original createdAt when one already exists. No field merge: this is the
// per-id contract, distinct from entity partial updates.
func (s *service) upsertProblem(ctx context.Context, slug string, payload ProblemPayload, now time.Time) error {
	createdAt := now
	existing, err := s.repository.GetProblem(ctx, slug, payload.ID)
	switch {
	case err == nil:
		createdAt = existing.CreatedAt
	case errors.Is(err, ErrProblemNotFound):
	default:
		return err
	}
	return s.repository.PutProblem(ctx, slug, payload.problem(createdAt, now))
}

// removeProblem deletes a problem and best-effort cleans its assets. A
// nonexistent id is a no-op, not an error.
func (s *service) removeProblem(ctx context.Context, slug, problemID string) error {
	problem, err := s.repository.GetProblem(ctx, slug, problemID)
	if errors.Is(err, ErrProblemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.cleanupObjects(ctx, ProblemPrefix(slug, problemID), MediaKeys(problem.Media))
	return s.repository.DeleteProblem(ctx, slug, problemID)
}

func (s *service) DeleteModule(ctx context.Context, slug string) error {
	module, err := s.repository.GetModule(ctx, slug)
	if err != nil {
		return &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "delete", Err: err}
	}

	problems, err := s.repository.ListProblems(ctx, slug)
	if err != nil {
		return &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "delete", Err: err}
	}

	// Union of the module's own media and every problem's media.
	keys := MediaKeys(module.Media)
	for _, p := range problems {
		keys = append(keys, MediaKeys(p.Media)...)
	}

	// Assets, then child records, then the module record itself. The
	// record goes last so a crash leaves a re-deletable module rather
	// than a dangling reference to already-deleted children.
	s.cleanupObjects(ctx, OwnerPrefix(EntityTypePlaybook, slug), keys)

	if err := s.repository.DeleteProblems(ctx, slug); err != nil {
		return &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "delete", Err: err}
	}
	if err := s.repository.DeleteModule(ctx, slug); err != nil {
		return &EntityError{Kind: EntityTypePlaybook, Slug: slug, Op: "delete", Err: err}
	}

	s.publish(ctx, EntityTypePlaybook, slug, ActionDeleted)
	return nil
}

// Upload URL issuance

func (s *service) IssueUploadURL(ctx context.Context, req UploadURLRequest) (*UploadURL, error) {
	if !req.EntityType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntityType, req.EntityType)
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, req.ContentType)
	}

	objectKey, err := BuildObjectKey(req.EntityType, req.EntitySlug, req.ProblemID, req.Filename)
	if err != nil {
		return nil, err
	}

	url, err := s.blobStore.GetUploadURL(ctx, objectKey, req.ContentType)
	if err != nil {
		return nil, &StorageError{Key: objectKey, Op: "presign", Err: err}
	}

	return &UploadURL{
		URL:       url,
		Key:       req.Filename,
		S3Key:     objectKey,
		ExpiresAt: time.Now().UTC().Add(s.uploadExpiry),
	}, nil
}

// cleanupObjects best-effort deletes orphaned objects. Keys outside the
// owner's prefix are never deleted, and failures are logged rather than
// surfaced: the structured-record mutation is the authoritative outcome.
func (s *service) cleanupObjects(ctx context.Context, prefix string, keys []string) {
	if len(keys) == 0 {
		return
	}

	scoped, outside := ScopeKeys(keys, prefix)
	if len(outside) > 0 {
		slog.Warn("skipping object keys outside owner prefix", "prefix", prefix, "keys", outside)
	}
	if len(scoped) == 0 {
		return
	}

	if err := s.blobStore.DeleteObjects(ctx, scoped); err != nil {
		slog.Error("asset cleanup failed", "prefix", prefix, "err", err)
	}
}

func (s *service) publish(ctx context.Context, kind EntityType, slug, action string) {
	event := Event{
		ID:     uuid.New(),
		Kind:   kind,
		Slug:   slug,
		Action: action,
		Actor:  ActorFromContext(ctx),
		Time:   time.Now().UTC(),
	}
	if err := s.eventSink.Publish(ctx, event); err != nil {
		slog.Error("failed to publish audit event", "kind", kind, "slug", slug, "action", action, "err", err)
	}
}
