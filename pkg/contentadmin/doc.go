// Package contentadmin implements the write path of the botthef admin API:
// blog posts and playbook modules (with nested problems) persisted to a
// key-value document store, with binary assets in an object store reachable
// only through pre-signed upload URLs.
//
// The Service orchestrates each mutation as a fixed sequence of repository
// and blob-store operations so partial failure never corrupts records:
// creates are guarded by an existence check (the repository put is an
// upsert), updates are read-merge-write, and deletes clean up assets before
// removing records, child records before parents. Object-store cleanup is
// best effort; the document-store write is the authoritative outcome.
//
// Storage and persistence are behind the BlobStore and Repository
// interfaces; in-memory implementations back the tests, S3 and DynamoDB (or
// Postgres) back production.
package contentadmin
