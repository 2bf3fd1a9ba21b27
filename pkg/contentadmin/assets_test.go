package contentadmin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrphanedKeys(t *testing.T) {
	a := Media{Key: "a.png", S3Key: "images/blog/post/a.png", Type: MediaTypeImage}
	b := Media{Key: "b.png", S3Key: "images/blog/post/b.png", Type: MediaTypeImage}
	c := Media{Key: "c.png", S3Key: "images/blog/post/c.png", Type: MediaTypeImage}

	tests := []struct {
		name     string
		oldMedia []Media
		newMedia []Media
		want     []string
	}{
		{
			name:     "replaced entry is orphaned",
			oldMedia: []Media{a, b},
			newMedia: []Media{b, c},
			want:     []string{a.S3Key},
		},
		{
			name:     "empty new list orphans everything",
			oldMedia: []Media{a, b},
			newMedia: nil,
			want:     []string{a.S3Key, b.S3Key},
		},
		{
			name:     "identical lists orphan nothing",
			oldMedia: []Media{a, b},
			newMedia: []Media{a, b},
			want:     nil,
		},
		{
			name:     "empty old list orphans nothing",
			oldMedia: nil,
			newMedia: []Media{a},
			want:     nil,
		},
		{
			name:     "duplicates and empty keys are dropped",
			oldMedia: []Media{a, a, {Key: "x.png"}},
			newMedia: nil,
			want:     []string{a.S3Key},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrphanedKeys(tt.oldMedia, tt.newMedia))
		})
	}
}

func TestBuildObjectKey(t *testing.T) {
	tests := []struct {
		name       string
		entityType EntityType
		slug       string
		problemID  string
		filename   string
		want       string
		wantErr    error
	}{
		{
			name:       "blog asset",
			entityType: EntityTypeBlog,
			slug:       "hello-world",
			filename:   "cover.jpg",
			want:       "images/blog/hello-world/cover.jpg",
		},
		{
			name:       "module asset",
			entityType: EntityTypePlaybook,
			slug:       "two-pointers",
			filename:   "diagram.png",
			want:       "images/playbook/two-pointers/diagram.png",
		},
		{
			name:       "problem asset",
			entityType: EntityTypePlaybook,
			slug:       "two-pointers",
			problemID:  "167",
			filename:   "sketch.png",
			want:       "images/playbook/two-pointers/problems/167/sketch.png",
		},
		{
			name:       "unknown entity type",
			entityType: "comment",
			slug:       "hello",
			filename:   "a.png",
			wantErr:    ErrInvalidEntityType,
		},
		{
			name:       "path traversal in filename",
			entityType: EntityTypeBlog,
			slug:       "hello",
			filename:   "../../etc/passwd",
			wantErr:    ErrInvalidLocation,
		},
		{
			name:       "slash in slug",
			entityType: EntityTypeBlog,
			slug:       "a/b",
			filename:   "a.png",
			wantErr:    ErrInvalidLocation,
		},
		{
			name:       "empty filename",
			entityType: EntityTypeBlog,
			slug:       "hello",
			filename:   "",
			wantErr:    ErrInvalidLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := BuildObjectKey(tt.entityType, tt.slug, tt.problemID, tt.filename)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestScopeKeys(t *testing.T) {
	prefix := OwnerPrefix(EntityTypeBlog, "hello")
	in, out := ScopeKeys([]string{
		"images/blog/hello/a.png",
		"images/blog/other/b.png",
		"images/playbook/hello/c.png",
	}, prefix)

	assert.Equal(t, []string{"images/blog/hello/a.png"}, in)
	assert.Equal(t, []string{"images/blog/other/b.png", "images/playbook/hello/c.png"}, out)
}

func TestOwnerPrefixes(t *testing.T) {
	assert.Equal(t, "images/blog/hello/", OwnerPrefix(EntityTypeBlog, "hello"))
	assert.Equal(t, "images/playbook/tp/", OwnerPrefix(EntityTypePlaybook, "tp"))
	assert.Equal(t, "images/playbook/tp/problems/167/", ProblemPrefix("tp", "167"))
}
