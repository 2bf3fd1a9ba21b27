package contentadmin

import (
	"fmt"
	"time"
)

// Request types for the Service interface. Wire names match the admin UI's
// payloads (and the original storage layout the public frontend reads).
// Pointer fields on the update requests distinguish "not supplied" from
// "set to zero value": only supplied fields are written, and a supplied
// media list replaces the stored one wholesale.

// CreatePostRequest contains the full field set for a new blog post.
type CreatePostRequest struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Date    string   `json:"date"`
	Excerpt string   `json:"excerpt"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
	Media   []Media  `json:"media"`
}

// Validate checks required fields. Returns an error wrapping
// ErrInvalidPayload on failure.
func (r CreatePostRequest) Validate() error {
	if r.Slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidPayload)
	}
	if err := validateKeySegment(r.Slug); err != nil {
		return fmt.Errorf("%w: slug %q", ErrInvalidPayload, r.Slug)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPayload)
	}
	if r.Date == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidPayload)
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("%w: date must be an ISO date (YYYY-MM-DD)", ErrInvalidPayload)
	}
	return nil
}

// UpdatePostRequest carries a partial update: nil fields retain their stored
// values.
type UpdatePostRequest struct {
	Title   *string   `json:"title"`
	Date    *string   `json:"date"`
	Excerpt *string   `json:"excerpt"`
	Tags    *[]string `json:"tags"`
	Content *string   `json:"content"`
	Media   *[]Media  `json:"media"`
}

// Validate rejects an update that supplies no fields at all.
func (r UpdatePostRequest) Validate() error {
	if r.Title == nil && r.Date == nil && r.Excerpt == nil && r.Tags == nil &&
		r.Content == nil && r.Media == nil {
		return fmt.Errorf("%w: no fields to update", ErrInvalidPayload)
	}
	if r.Date != nil {
		if _, err := time.Parse("2006-01-02", *r.Date); err != nil {
			return fmt.Errorf("%w: date must be an ISO date (YYYY-MM-DD)", ErrInvalidPayload)
		}
	}
	return nil
}

// ProblemPayload is the wholesale representation of a problem, used both for
// initial problems on module creation and for per-id upserts on module
// update. Unlike entity updates there is no partial form: an upsert replaces
// the stored problem with exactly this payload.
type ProblemPayload struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	LeetcodeURL string       `json:"leetcodeUrl"`
	Difficulty  Difficulty   `json:"difficulty"`
	Status      ReviewStatus `json:"status"`
	Pseudocode  string       `json:"pseudocode"`
	Media       []Media      `json:"media"`
	Tags        []string     `json:"tags,omitempty"`
	LastSolved  *time.Time   `json:"lastSolved,omitempty"`
	NextReview  *time.Time   `json:"nextReview,omitempty"`
}

// Validate checks required fields and enum membership.
func (p ProblemPayload) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: problem id is required", ErrInvalidPayload)
	}
	if err := validateKeySegment(p.ID); err != nil {
		return fmt.Errorf("%w: problem id %q", ErrInvalidPayload, p.ID)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: problem title is required", ErrInvalidPayload)
	}
	if !p.Difficulty.IsValid() {
		return fmt.Errorf("%w: difficulty %q", ErrInvalidPayload, p.Difficulty)
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("%w: status %q", ErrInvalidPayload, p.Status)
	}
	return nil
}

// problem converts the payload into a Problem record with the given
// timestamps. Status defaults to "New" when omitted.
func (p ProblemPayload) problem(createdAt, updatedAt time.Time) *Problem {
	status := p.Status
	if status == "" {
		status = ReviewStatusNew
	}
	return &Problem{
		ID:          p.ID,
		Title:       p.Title,
		LeetcodeURL: p.LeetcodeURL,
		Difficulty:  p.Difficulty,
		Status:      status,
		Pseudocode:  p.Pseudocode,
		Media:       p.Media,
		Tags:        p.Tags,
		LastSolved:  p.LastSolved,
		NextReview:  p.NextReview,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// CreateModuleRequest contains the full field set for a new playbook module,
// optionally with its initial problems.
type CreateModuleRequest struct {
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Content     string           `json:"content"`
	Order       int              `json:"order"`
	Media       []Media          `json:"media"`
	Problems    []ProblemPayload `json:"problems,omitempty"`
}

// Validate checks required fields, including every initial problem.
func (r CreateModuleRequest) Validate() error {
	if r.Slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidPayload)
	}
	if err := validateKeySegment(r.Slug); err != nil {
		return fmt.Errorf("%w: slug %q", ErrInvalidPayload, r.Slug)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPayload)
	}
	seen := make(map[string]struct{}, len(r.Problems))
	for _, p := range r.Problems {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate problem id %q", ErrInvalidPayload, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// UpdateModuleRequest carries a partial module update plus problem-level
// operations: upserts replace problems wholesale by id, removals delete by
// id (a missing id is a no-op).
type UpdateModuleRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	Order       *int     `json:"order"`
	Media       *[]Media `json:"media"`

	UpsertProblems   []ProblemPayload `json:"upsert_problems,omitempty"`
	DeleteProblemIDs []string         `json:"delete_problem_ids,omitempty"`
}

// Validate rejects an update that supplies neither module fields nor problem
// operations, and validates every upserted problem.
func (r UpdateModuleRequest) Validate() error {
	if !r.hasModuleFields() && len(r.UpsertProblems) == 0 && len(r.DeleteProblemIDs) == 0 {
		return fmt.Errorf("%w: no fields to update", ErrInvalidPayload)
	}
	for _, p := range r.UpsertProblems {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r UpdateModuleRequest) hasModuleFields() bool {
	return r.Title != nil || r.Description != nil || r.Content != nil ||
		r.Order != nil || r.Media != nil
}

// UploadURLRequest asks for a pre-signed PUT URL for a single asset upload.
// ProblemID scopes the asset to a problem within a playbook module.
type UploadURLRequest struct {
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	EntityType  EntityType `json:"entity_type"`
	EntitySlug  string     `json:"entity_slug"`
	ProblemID   string     `json:"problem_id,omitempty"`
}
