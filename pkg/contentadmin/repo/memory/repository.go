// Package memory provides an in-memory contentadmin.Repository used by
// tests and local development.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

// Repository implements contentadmin.Repository using in-memory maps.
type Repository struct {
	mu       sync.RWMutex
	posts    map[string]*contentadmin.Post
	modules  map[string]*contentadmin.Module
	problems map[string]map[string]*contentadmin.Problem // module slug -> problem id -> problem
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		posts:    make(map[string]*contentadmin.Post),
		modules:  make(map[string]*contentadmin.Module),
		problems: make(map[string]map[string]*contentadmin.Problem),
	}
}

var _ contentadmin.Repository = (*Repository)(nil)

// Post operations

func (r *Repository) GetPost(ctx context.Context, slug string) (*contentadmin.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[slug]
	if !exists {
		return nil, contentadmin.ErrPostNotFound
	}
	return clonePost(post), nil
}

func (r *Repository) PutPost(ctx context.Context, post *contentadmin.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts[post.Slug] = clonePost(post)
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, slug)
	return nil
}

// Module operations

func (r *Repository) GetModule(ctx context.Context, slug string) (*contentadmin.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	module, exists := r.modules[slug]
	if !exists {
		return nil, contentadmin.ErrModuleNotFound
	}
	return cloneModule(module), nil
}

func (r *Repository) PutModule(ctx context.Context, module *contentadmin.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules[module.Slug] = cloneModule(module)
	return nil
}

func (r *Repository) DeleteModule(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.modules, slug)
	return nil
}

// Problem operations

func (r *Repository) GetProblem(ctx context.Context, moduleSlug, problemID string) (*contentadmin.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	problem, exists := r.problems[moduleSlug][problemID]
	if !exists {
		return nil, contentadmin.ErrProblemNotFound
	}
	return cloneProblem(problem), nil
}

func (r *Repository) PutProblem(ctx context.Context, moduleSlug string, problem *contentadmin.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.problems[moduleSlug] == nil {
		r.problems[moduleSlug] = make(map[string]*contentadmin.Problem)
	}
	r.problems[moduleSlug][problem.ID] = cloneProblem(problem)
	return nil
}

func (r *Repository) DeleteProblem(ctx context.Context, moduleSlug, problemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.problems[moduleSlug], problemID)
	return nil
}

func (r *Repository) ListProblems(ctx context.Context, moduleSlug string) ([]*contentadmin.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	problems := make([]*contentadmin.Problem, 0, len(r.problems[moduleSlug]))
	for _, p := range r.problems[moduleSlug] {
		problems = append(problems, cloneProblem(p))
	}
	return problems, nil
}

func (r *Repository) DeleteProblems(ctx context.Context, moduleSlug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.problems, moduleSlug)
	return nil
}

// Copies guard against callers mutating stored records through retained
// pointers.

func clonePost(p *contentadmin.Post) *contentadmin.Post {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Media = slices.Clone(p.Media)
	return &c
}

func cloneModule(m *contentadmin.Module) *contentadmin.Module {
	c := *m
	c.Media = slices.Clone(m.Media)
	return &c
}

func cloneProblem(p *contentadmin.Problem) *contentadmin.Problem {
	c := *p
	c.Media = slices.Clone(p.Media)
	c.Tags = slices.Clone(p.Tags)
	return &c
}
