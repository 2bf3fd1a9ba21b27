package contentadmin

import (
	"time"
)

// EntityType identifies a top-level content collection.
type EntityType string

// Entity type constants (typed).
const (
	EntityTypeBlog     EntityType = "blog"
	EntityTypePlaybook EntityType = "playbook"
)

// IsValid reports whether the entity type is one of the known collections.
func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeBlog, EntityTypePlaybook:
		return true
	}
	return false
}

// Difficulty is the domain type for a problem's difficulty classification.
type Difficulty string

// Difficulty constants (typed).
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// IsValid reports whether the difficulty is a known value.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ReviewStatus is the domain type for a problem's spaced-repetition state.
type ReviewStatus string

// Review status constants (typed).
const (
	ReviewStatusNew    ReviewStatus = "New"
	ReviewStatusDue    ReviewStatus = "Due"
	ReviewStatusReview ReviewStatus = "Review"
)

// IsValid reports whether the review status is a known value.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusNew, ReviewStatusDue, ReviewStatusReview:
		return true
	}
	return false
}

// MediaTypeImage is the default media type tag.
const MediaTypeImage = "image"

// Media links a filename referenced from MDX markup to the backing object in
// the object store. Media has no lifecycle of its own: it lives and dies with
// the post, module, or problem whose media list carries it.
//
// Field names are camelCase on the wire and in storage because the public
// frontend reads records straight out of the document store.
type Media struct {
	Key   string `json:"key" dynamodbav:"key"`
	S3Key string `json:"s3Key" dynamodbav:"s3Key"`
	Type  string `json:"type" dynamodbav:"type"`
}

// Post is a blog entry. The slug is the identity and is immutable after
// creation; it is encoded in the record key rather than stored as an
// attribute.
type Post struct {
	Slug      string    `json:"slug" dynamodbav:"-"`
	Title     string    `json:"title" dynamodbav:"title"`
	Date      string    `json:"date" dynamodbav:"date"` // publish date, ISO date e.g. "2026-02-18"
	Excerpt   string    `json:"excerpt" dynamodbav:"excerpt"`
	Tags      []string  `json:"tags" dynamodbav:"tags"`
	Content   string    `json:"content" dynamodbav:"content"` // full MDX body
	Media     []Media   `json:"media" dynamodbav:"media"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Module is a playbook module. It owns a collection of Problems stored as
// sibling records under the same partition.
type Module struct {
	Slug        string    `json:"slug" dynamodbav:"-"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Content     string    `json:"content" dynamodbav:"content"` // full MDX body
	Order       int       `json:"order" dynamodbav:"order"`     // display order
	Media       []Media   `json:"media" dynamodbav:"media"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Problem is a sub-item owned by exactly one module. Its ID is unique only
// within the parent module and is encoded in the record key.
type Problem struct {
	ID          string       `json:"id" dynamodbav:"-"` // problem number, e.g. "167"
	Title       string       `json:"title" dynamodbav:"title"`
	LeetcodeURL string       `json:"leetcodeUrl" dynamodbav:"leetcodeUrl"`
	Difficulty  Difficulty   `json:"difficulty" dynamodbav:"difficulty"`
	Status      ReviewStatus `json:"status" dynamodbav:"status"`
	Pseudocode  string       `json:"pseudocode" dynamodbav:"pseudocode"` // MDX content
	Media       []Media      `json:"media" dynamodbav:"media"`
	Tags        []string     `json:"tags,omitempty" dynamodbav:"tags,omitempty"`
	LastSolved  *time.Time   `json:"lastSolved,omitempty" dynamodbav:"lastSolved,omitempty"`
	NextReview  *time.Time   `json:"nextReview,omitempty" dynamodbav:"nextReview,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" dynamodbav:"updatedAt"`
}

// UploadURL is the result of issuing a pre-signed upload URL. Key is the
// relative filename the admin UI stores in media[].key; S3Key is the full
// object key it stores in media[].s3Key.
type UploadURL struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	S3Key     string    `json:"s3Key"`
	ExpiresAt time.Time `json:"expiresAt"`
}
