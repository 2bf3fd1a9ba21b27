package contentadmin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botthef/content-admin/pkg/contentadmin"
	memoryrepo "github.com/botthef/content-admin/pkg/contentadmin/repo/memory"
	memorystorage "github.com/botthef/content-admin/pkg/contentadmin/storage/memory"
)

func setupTestService(t *testing.T) (contentadmin.Service, *memoryrepo.Repository, *memorystorage.Backend) {
	t.Helper()

	repo := memoryrepo.New()
	blobs := memorystorage.New()

	svc, err := contentadmin.New(
		contentadmin.WithRepository(repo),
		contentadmin.WithBlobStore(blobs),
	)
	require.NoError(t, err)

	return svc, repo, blobs
}

func strPtr(s string) *string { return &s }

func mediaFor(entityType contentadmin.EntityType, slug string, names ...string) []contentadmin.Media {
	media := make([]contentadmin.Media, 0, len(names))
	for _, name := range names {
		media = append(media, contentadmin.Media{
			Key:   name,
			S3Key: contentadmin.OwnerPrefix(entityType, slug) + name,
			Type:  contentadmin.MediaTypeImage,
		})
	}
	return media
}

func problemMediaFor(slug, problemID string, names ...string) []contentadmin.Media {
	media := make([]contentadmin.Media, 0, len(names))
	for _, name := range names {
		media = append(media, contentadmin.Media{
			Key:   name,
			S3Key: contentadmin.ProblemPrefix(slug, problemID) + name,
			Type:  contentadmin.MediaTypeImage,
		})
	}
	return media
}

func TestNew(t *testing.T) {
	repo := memoryrepo.New()
	blobs := memorystorage.New()

	t.Run("requires a repository", func(t *testing.T) {
		_, err := contentadmin.New(contentadmin.WithBlobStore(blobs))
		require.Error(t, err)
	})

	t.Run("requires a blob store", func(t *testing.T) {
		_, err := contentadmin.New(contentadmin.WithRepository(repo))
		require.Error(t, err)
	})

	t.Run("succeeds with both", func(t *testing.T) {
		svc, err := contentadmin.New(
			contentadmin.WithRepository(repo),
			contentadmin.WithBlobStore(blobs),
		)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestCreatePost(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:    "hello-world",
		Title:   "Hello, World",
		Date:    "2026-02-18",
		Excerpt: "First post",
		Tags:    []string{"go"},
		Content: "# Hello",
		Media:   mediaFor(contentadmin.EntityTypeBlog, "hello-world", "cover.jpg"),
	})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, "Hello, World", post.Title)
	assert.Len(t, post.Media, 1)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:  "hello-world",
		Title: "Original",
		Date:  "2026-02-18",
	})
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:  "hello-world",
		Title: "Impostor",
		Date:  "2026-02-19",
	})
	require.ErrorIs(t, err, contentadmin.ErrSlugExists)

	// The stored record is untouched by the rejected create.
	stored, err := repo.GetPost(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  contentadmin.CreatePostRequest
	}{
		{"missing slug", contentadmin.CreatePostRequest{Title: "T", Date: "2026-02-18"}},
		{"missing title", contentadmin.CreatePostRequest{Slug: "s", Date: "2026-02-18"}},
		{"missing date", contentadmin.CreatePostRequest{Slug: "s", Title: "T"}},
		{"malformed date", contentadmin.CreatePostRequest{Slug: "s", Title: "T", Date: "Feb 18"}},
		{"slug with slash", contentadmin.CreatePostRequest{Slug: "a/b", Title: "T", Date: "2026-02-18"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.req)
			assert.ErrorIs(t, err, contentadmin.ErrInvalidPayload)
		})
	}
}

func TestUpdatePost(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:    "hello-world",
		Title:   "Hello, World",
		Date:    "2026-02-18",
		Excerpt: "First post",
		Content: "# Hello",
	})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	updated, err := svc.UpdatePost(ctx, "hello-world", contentadmin.UpdatePostRequest{
		Title: strPtr("Hello Again"),
	})
	require.NoError(t, err)

	// Only the supplied field changes; everything else is retained.
	assert.Equal(t, "Hello Again", updated.Title)
	assert.Equal(t, "First post", updated.Excerpt)
	assert.Equal(t, "# Hello", updated.Content)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdatePostNotFound(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.UpdatePost(context.Background(), "missing", contentadmin.UpdatePostRequest{
		Title: strPtr("New Title"),
	})
	require.ErrorIs(t, err, contentadmin.ErrPostNotFound)
}

func TestUpdatePostNoFields(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.UpdatePost(context.Background(), "hello-world", contentadmin.UpdatePostRequest{})
	require.ErrorIs(t, err, contentadmin.ErrInvalidPayload)
}

func TestUpdatePostMediaReplaceCleansOrphans(t *testing.T) {
	svc, _, blobs := setupTestService(t)
	ctx := context.Background()

	old := mediaFor(contentadmin.EntityTypeBlog, "hello-world", "a.png", "b.png")
	_, err := svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:  "hello-world",
		Title: "Hello",
		Date:  "2026-02-18",
		Media: old,
	})
	require.NoError(t, err)

	// Keep b, add c: only a is orphaned.
	replacement := mediaFor(contentadmin.EntityTypeBlog, "hello-world", "b.png", "c.png")
	updated, err := svc.UpdatePost(ctx, "hello-world", contentadmin.UpdatePostRequest{
		Media: &replacement,
	})
	require.NoError(t, err)

	assert.Equal(t, replacement, updated.Media)
	assert.Equal(t, []string{"images/blog/hello-world/a.png"}, blobs.DeletedKeys())
}

func TestUpdatePostSkipsOutOfPrefixKeys(t *testing.T) {
	svc, _, blobs := setupTestService(t)
	ctx := context.Background()

	// One media entry points into another post's prefix. The diff will flag
	// it, but the cleanup must refuse to delete it.
	old := []contentadmin.Media{
		{Key: "mine.png", S3Key: "images/blog/hello-world/mine.png", Type: contentadmin.MediaTypeImage},
		{Key: "theirs.png", S3Key: "images/blog/other-post/theirs.png", Type: contentadmin.MediaTypeImage},
	}
	_, err := svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:  "hello-world",
		Title: "Hello",
		Date:  "2026-02-18",
		Media: old,
	})
	require.NoError(t, err)

	empty := []contentadmin.Media{}
	_, err = svc.UpdatePost(ctx, "hello-world", contentadmin.UpdatePostRequest{Media: &empty})
	require.NoError(t, err)

	assert.Equal(t, []string{"images/blog/hello-world/mine.png"}, blobs.DeletedKeys())
}

func TestDeletePost(t *testing.T) {
	svc, repo, blobs := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:  "hello-world",
		Title: "Hello",
		Date:  "2026-02-18",
		Media: mediaFor(contentadmin.EntityTypeBlog, "hello-world", "a.png", "b.png"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, "hello-world"))

	_, err = repo.GetPost(ctx, "hello-world")
	assert.ErrorIs(t, err, contentadmin.ErrPostNotFound)
	assert.ElementsMatch(t, []string{
		"images/blog/hello-world/a.png",
		"images/blog/hello-world/b.png",
	}, blobs.DeletedKeys())

	// Deleting again reports not found; the record is already gone.
	err = svc.DeletePost(ctx, "hello-world")
	assert.ErrorIs(t, err, contentadmin.ErrPostNotFound)
}

func TestDeletePostSurvivesCleanupFailure(t *testing.T) {
	svc, repo, blobs := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:  "hello-world",
		Title: "Hello",
		Date:  "2026-02-18",
		Media: mediaFor(contentadmin.EntityTypeBlog, "hello-world", "a.png"),
	})
	require.NoError(t, err)

	blobs.FailDelete("images/blog/hello-world/a.png", errors.New("access denied"))

	// Cleanup failures are logged, never surfaced; the record still goes.
	require.NoError(t, svc.DeletePost(ctx, "hello-world"))

	_, err = repo.GetPost(ctx, "hello-world")
	assert.ErrorIs(t, err, contentadmin.ErrPostNotFound)
}

func TestCreateModule(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()

	module, err := svc.CreateModule(ctx, contentadmin.CreateModuleRequest{
		Slug:        "two-pointers",
		Title:       "Two Pointers",
		Description: "Converging indexes",
		Content:     "# Two Pointers",
		Order:       1,
		Problems: []contentadmin.ProblemPayload{
			{ID: "167", Title: "Two Sum II", Difficulty: contentadmin.DifficultyMedium},
			{ID: "125", Title: "Valid Palindrome", Difficulty: contentadmin.DifficultyEasy},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "two-pointers", module.Slug)

	problems, err := repo.ListProblems(ctx, "two-pointers")
	require.NoError(t, err)
	require.Len(t, problems, 2)

	p, err := repo.GetProblem(ctx, "two-pointers", "167")
	require.NoError(t, err)
	assert.Equal(t, "Two Sum II", p.Title)
	// Omitted status defaults to New.
	assert.Equal(t, contentadmin.ReviewStatusNew, p.Status)
}

func TestCreateModuleDuplicateProblemIDs(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.CreateModule(context.Background(), contentadmin.CreateModuleRequest{
		Slug:  "two-pointers",
		Title: "Two Pointers",
		Problems: []contentadmin.ProblemPayload{
			{ID: "167", Title: "A", Difficulty: contentadmin.DifficultyEasy},
			{ID: "167", Title: "B", Difficulty: contentadmin.DifficultyEasy},
		},
	})
	require.ErrorIs(t, err, contentadmin.ErrInvalidPayload)
}

func TestUpdateModuleUpsertReplacesProblemWholesale(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateModule(ctx, contentadmin.CreateModuleRequest{
		Slug:  "two-pointers",
		Title: "Two Pointers",
		Problems: []contentadmin.ProblemPayload{
			{
				ID:         "167",
				Title:      "Two Sum II",
				Difficulty: contentadmin.DifficultyMedium,
				Pseudocode: "left, right = 0, n-1",
				Tags:       []string{"array"},
			},
		},
	})
	require.NoError(t, err)

	original, err := repo.GetProblem(ctx, "two-pointers", "167")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	// The upsert omits pseudocode and tags. No merge happens: the stored
	// problem becomes exactly the payload, keeping only its createdAt.
	_, err = svc.UpdateModule(ctx, "two-pointers", contentadmin.UpdateModuleRequest{
		UpsertProblems: []contentadmin.ProblemPayload{
			{
				ID:         "167",
				Title:      "Two Sum II (sorted)",
				Difficulty: contentadmin.DifficultyMedium,
				Status:     contentadmin.ReviewStatusDue,
			},
		},
	})
	require.NoError(t, err)

	replaced, err := repo.GetProblem(ctx, "two-pointers", "167")
	require.NoError(t, err)
	assert.Equal(t, "Two Sum II (sorted)", replaced.Title)
	assert.Equal(t, contentadmin.ReviewStatusDue, replaced.Status)
	assert.Empty(t, replaced.Pseudocode)
	assert.Empty(t, replaced.Tags)
	assert.Equal(t, original.CreatedAt, replaced.CreatedAt)
	assert.True(t, replaced.UpdatedAt.After(original.UpdatedAt))
}

func TestUpdateModuleRemoveProblem(t *testing.T) {
	svc, repo, blobs := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateModule(ctx, contentadmin.CreateModuleRequest{
		Slug:  "two-pointers",
		Title: "Two Pointers",
		Problems: []contentadmin.ProblemPayload{
			{
				ID:         "167",
				Title:      "Two Sum II",
				Difficulty: contentadmin.DifficultyMedium,
				Media:      problemMediaFor("two-pointers", "167", "sketch.png"),
			},
		},
	})
	require.NoError(t, err)

	_, err = svc.UpdateModule(ctx, "two-pointers", contentadmin.UpdateModuleRequest{
		DeleteProblemIDs: []string{"167"},
	})
	require.NoError(t, err)

	_, err = repo.GetProblem(ctx, "two-pointers", "167")
	assert.ErrorIs(t, err, contentadmin.ErrProblemNotFound)
	assert.Equal(t, []string{"images/playbook/two-pointers/problems/167/sketch.png"}, blobs.DeletedKeys())
}

func TestUpdateModuleRemoveMissingProblemIsNoOp(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateModule(ctx, contentadmin.CreateModuleRequest{
		Slug:  "two-pointers",
		Title: "Two Pointers",
	})
	require.NoError(t, err)

	_, err = svc.UpdateModule(ctx, "two-pointers", contentadmin.UpdateModuleRequest{
		DeleteProblemIDs: []string{"999"},
	})
	require.NoError(t, err)
}

func TestUpdateModuleNotFound(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.UpdateModule(context.Background(), "missing", contentadmin.UpdateModuleRequest{
		Title: strPtr("New Title"),
	})
	require.ErrorIs(t, err, contentadmin.ErrModuleNotFound)
}

func TestDeleteModuleCascades(t *testing.T) {
	svc, repo, blobs := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateModule(ctx, contentadmin.CreateModuleRequest{
		Slug:  "two-pointers",
		Title: "Two Pointers",
		Media: mediaFor(contentadmin.EntityTypePlaybook, "two-pointers", "banner.png"),
		Problems: []contentadmin.ProblemPayload{
			{
				ID:         "167",
				Title:      "Two Sum II",
				Difficulty: contentadmin.DifficultyMedium,
				Media:      problemMediaFor("two-pointers", "167", "a.png", "b.png"),
			},
			{
				ID:         "125",
				Title:      "Valid Palindrome",
				Difficulty: contentadmin.DifficultyEasy,
				Media:      problemMediaFor("two-pointers", "125", "c.png"),
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteModule(ctx, "two-pointers"))

	_, err = repo.GetModule(ctx, "two-pointers")
	assert.ErrorIs(t, err, contentadmin.ErrModuleNotFound)

	problems, err := repo.ListProblems(ctx, "two-pointers")
	require.NoError(t, err)
	assert.Empty(t, problems)

	assert.ElementsMatch(t, []string{
		"images/playbook/two-pointers/banner.png",
		"images/playbook/two-pointers/problems/167/a.png",
		"images/playbook/two-pointers/problems/167/b.png",
		"images/playbook/two-pointers/problems/125/c.png",
	}, blobs.DeletedKeys())

	err = svc.DeleteModule(ctx, "two-pointers")
	assert.ErrorIs(t, err, contentadmin.ErrModuleNotFound)
}

func TestIssueUploadURL(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     contentadmin.UploadURLRequest
		wantKey string
		wantErr error
	}{
		{
			name: "blog asset",
			req: contentadmin.UploadURLRequest{
				Filename:    "cover.jpg",
				ContentType: "image/jpeg",
				EntityType:  contentadmin.EntityTypeBlog,
				EntitySlug:  "hello-world",
			},
			wantKey: "images/blog/hello-world/cover.jpg",
		},
		{
			name: "problem asset",
			req: contentadmin.UploadURLRequest{
				Filename:    "sketch.png",
				ContentType: "image/png",
				EntityType:  contentadmin.EntityTypePlaybook,
				EntitySlug:  "two-pointers",
				ProblemID:   "167",
			},
			wantKey: "images/playbook/two-pointers/problems/167/sketch.png",
		},
		{
			name: "disallowed content type",
			req: contentadmin.UploadURLRequest{
				Filename:    "notes.txt",
				ContentType: "text/plain",
				EntityType:  contentadmin.EntityTypeBlog,
				EntitySlug:  "hello-world",
			},
			wantErr: contentadmin.ErrInvalidContentType,
		},
		{
			name: "unknown entity type",
			req: contentadmin.UploadURLRequest{
				Filename:    "a.png",
				ContentType: "image/png",
				EntityType:  "comment",
				EntitySlug:  "hello-world",
			},
			wantErr: contentadmin.ErrInvalidEntityType,
		},
		{
			name: "traversal in filename",
			req: contentadmin.UploadURLRequest{
				Filename:    "../escape.png",
				ContentType: "image/png",
				EntityType:  contentadmin.EntityTypeBlog,
				EntitySlug:  "hello-world",
			},
			wantErr: contentadmin.ErrInvalidLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploadURL, err := svc.IssueUploadURL(ctx, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, uploadURL.S3Key)
			assert.Equal(t, tt.req.Filename, uploadURL.Key)
			assert.NotEmpty(t, uploadURL.URL)
			assert.True(t, uploadURL.ExpiresAt.After(time.Now()))
		})
	}
}

// recordingSink captures published events for assertions.
type recordingSink struct {
	events []contentadmin.Event
}

func (s *recordingSink) Publish(ctx context.Context, event contentadmin.Event) error {
	s.events = append(s.events, event)
	return nil
}

func TestAuditEvents(t *testing.T) {
	sink := &recordingSink{}
	svc, err := contentadmin.New(
		contentadmin.WithRepository(memoryrepo.New()),
		contentadmin.WithBlobStore(memorystorage.New()),
		contentadmin.WithEventSink(sink),
	)
	require.NoError(t, err)

	ctx := contentadmin.WithActor(context.Background(), "admin@example.com")

	_, err = svc.CreatePost(ctx, contentadmin.CreatePostRequest{
		Slug:  "hello-world",
		Title: "Hello",
		Date:  "2026-02-18",
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeletePost(ctx, "hello-world"))

	require.Len(t, sink.events, 2)
	assert.Equal(t, contentadmin.ActionCreated, sink.events[0].Action)
	assert.Equal(t, contentadmin.ActionDeleted, sink.events[1].Action)
	for _, event := range sink.events {
		assert.Equal(t, contentadmin.EntityTypeBlog, event.Kind)
		assert.Equal(t, "hello-world", event.Slug)
		assert.Equal(t, "admin@example.com", event.Actor)
		assert.NotEqual(t, uuid.Nil, event.ID)
	}
}
