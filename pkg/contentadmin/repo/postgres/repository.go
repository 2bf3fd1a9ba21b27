// Package postgres provides a contentadmin.Repository backed by a single
// Postgres document table, for environments without DynamoDB. Records keep
// the same PK/SK addressing as the DynamoDB layout, with the payload stored
// as jsonb.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

// Schema is the document table this repository expects.
const Schema = `
CREATE TABLE IF NOT EXISTS content_records (
    pk     TEXT  NOT NULL,
    sk     TEXT  NOT NULL,
    record JSONB NOT NULL,
    PRIMARY KEY (pk, sk)
);
`

const (
	skMetadata      = "METADATA"
	problemSKPrefix = "PROBLEM#"
)

// DBTX is the subset of pgxpool.Pool the repository uses, so it can run
// inside a transaction as well.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements contentadmin.Repository over Postgres.
type Repository struct {
	db DBTX
}

var _ contentadmin.Repository = (*Repository)(nil)

// New creates a Postgres-backed repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

func blogPK(slug string) string     { return "BLOG#" + slug }
func playbookPK(slug string) string { return "PLAYBOOK#" + slug }
func problemSK(id string) string    { return problemSKPrefix + id }

func (r *Repository) get(ctx context.Context, pk, sk string, record any, notFound error) error {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT record FROM content_records WHERE pk = $1 AND sk = $2`,
		pk, sk,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return storeError("get", err)
	}
	if err := json.Unmarshal(raw, record); err != nil {
		return fmt.Errorf("failed to unmarshal record %s/%s: %w", pk, sk, err)
	}
	return nil
}

func (r *Repository) put(ctx context.Context, pk, sk string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s/%s: %w", pk, sk, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO content_records (pk, sk, record)
		VALUES ($1, $2, $3)
		ON CONFLICT (pk, sk) DO UPDATE SET record = EXCLUDED.record`,
		pk, sk, raw,
	)
	if err != nil {
		return storeError("put", err)
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, pk, sk string) error {
	// Idempotent: deleting an absent record is a success.
	if _, err := r.db.Exec(ctx,
		`DELETE FROM content_records WHERE pk = $1 AND sk = $2`, pk, sk,
	); err != nil {
		return storeError("delete", err)
	}
	return nil
}

// Post operations

func (r *Repository) GetPost(ctx context.Context, slug string) (*contentadmin.Post, error) {
	var post contentadmin.Post
	if err := r.get(ctx, blogPK(slug), skMetadata, &post, contentadmin.ErrPostNotFound); err != nil {
		return nil, err
	}
	post.Slug = slug
	return &post, nil
}

func (r *Repository) PutPost(ctx context.Context, post *contentadmin.Post) error {
	return r.put(ctx, blogPK(post.Slug), skMetadata, post)
}

func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	return r.delete(ctx, blogPK(slug), skMetadata)
}

// Module operations

func (r *Repository) GetModule(ctx context.Context, slug string) (*contentadmin.Module, error) {
	var module contentadmin.Module
	if err := r.get(ctx, playbookPK(slug), skMetadata, &module, contentadmin.ErrModuleNotFound); err != nil {
		return nil, err
	}
	module.Slug = slug
	return &module, nil
}

func (r *Repository) PutModule(ctx context.Context, module *contentadmin.Module) error {
	return r.put(ctx, playbookPK(module.Slug), skMetadata, module)
}

func (r *Repository) DeleteModule(ctx context.Context, slug string) error {
	return r.delete(ctx, playbookPK(slug), skMetadata)
}

// Problem operations

func (r *Repository) GetProblem(ctx context.Context, moduleSlug, problemID string) (*contentadmin.Problem, error) {
	var problem contentadmin.Problem
	if err := r.get(ctx, playbookPK(moduleSlug), problemSK(problemID), &problem, contentadmin.ErrProblemNotFound); err != nil {
		return nil, err
	}
	problem.ID = problemID
	return &problem, nil
}

func (r *Repository) PutProblem(ctx context.Context, moduleSlug string, problem *contentadmin.Problem) error {
	return r.put(ctx, playbookPK(moduleSlug), problemSK(problem.ID), problem)
}

func (r *Repository) DeleteProblem(ctx context.Context, moduleSlug, problemID string) error {
	return r.delete(ctx, playbookPK(moduleSlug), problemSK(problemID))
}

func (r *Repository) ListProblems(ctx context.Context, moduleSlug string) ([]*contentadmin.Problem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT record FROM content_records
		WHERE pk = $1 AND sk LIKE $2`,
		playbookPK(moduleSlug), problemSKPrefix+"%",
	)
	if err != nil {
		return nil, storeError("list problems", err)
	}
	defer rows.Close()

	var problems []*contentadmin.Problem
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storeError("list problems", err)
		}
		var problem contentadmin.Problem
		if err := json.Unmarshal(raw, &problem); err != nil {
			return nil, fmt.Errorf("failed to unmarshal problem record: %w", err)
		}
		problems = append(problems, &problem)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list problems", err)
	}
	return problems, nil
}

func (r *Repository) DeleteProblems(ctx context.Context, moduleSlug string) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM content_records
		WHERE pk = $1 AND sk LIKE $2`,
		playbookPK(moduleSlug), problemSKPrefix+"%",
	); err != nil {
		return storeError("delete problems", err)
	}
	return nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", contentadmin.ErrStoreUnavailable, op, err)
}
