package contentadmin

import (
	"fmt"
	"strings"
)

// Object keys for uploaded assets are derived deterministically from the
// owning entity's identity:
//
//	blog:     images/blog/<slug>/<filename>
//	playbook: images/playbook/<slug>/<filename>
//	          images/playbook/<slug>/problems/<id>/<filename>
//
// Client-supplied keys are never authoritative: deletion is scoped to the
// owner's prefix, and upload URLs are only issued for keys the server
// derived itself.

// OwnerPrefix returns the object-key prefix every asset owned by the entity
// must live under.
func OwnerPrefix(entityType EntityType, slug string) string {
	return fmt.Sprintf("images/%s/%s/", entityType, slug)
}

// ProblemPrefix returns the object-key prefix for assets owned by a single
// problem within a module.
func ProblemPrefix(moduleSlug, problemID string) string {
	return fmt.Sprintf("images/%s/%s/problems/%s/", EntityTypePlaybook, moduleSlug, problemID)
}

// BuildObjectKey derives the canonical object key for an uploaded asset.
// problemID may be empty for entity-level assets. Returns ErrInvalidEntityType
// for unknown collections and ErrInvalidLocation when any path segment would
// escape the owner's prefix.
func BuildObjectKey(entityType EntityType, slug, problemID, filename string) (string, error) {
	if !entityType.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}
	for _, segment := range []string{slug, problemID, filename} {
		if err := validateKeySegment(segment); err != nil {
			return "", err
		}
	}
	if slug == "" || filename == "" {
		return "", fmt.Errorf("%w: slug and filename are required", ErrInvalidLocation)
	}

	var key string
	switch {
	case entityType == EntityTypePlaybook && problemID != "":
		key = ProblemPrefix(slug, problemID) + filename
	default:
		key = OwnerPrefix(entityType, slug) + filename
	}

	// Belt and braces: the derived key must sit under the owner's prefix.
	if !strings.HasPrefix(key, OwnerPrefix(entityType, slug)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocation, key)
	}
	return key, nil
}

// validateKeySegment rejects segments that would let a key escape its prefix.
func validateKeySegment(segment string) error {
	if strings.Contains(segment, "/") || strings.Contains(segment, "\\") ||
		strings.Contains(segment, "..") || strings.HasPrefix(segment, ".") {
		return fmt.Errorf("%w: invalid path segment %q", ErrInvalidLocation, segment)
	}
	return nil
}

// OrphanedKeys computes which object-store keys are referenced by old media
// but not by new media. Passing an empty new list yields every referenced
// key, which is the full-delete case. Pure function; preserves old-list
// order and drops duplicates and empty keys.
func OrphanedKeys(oldMedia, newMedia []Media) []string {
	kept := make(map[string]struct{}, len(newMedia))
	for _, m := range newMedia {
		kept[m.S3Key] = struct{}{}
	}

	var orphaned []string
	seen := make(map[string]struct{}, len(oldMedia))
	for _, m := range oldMedia {
		if m.S3Key == "" {
			continue
		}
		if _, ok := kept[m.S3Key]; ok {
			continue
		}
		if _, ok := seen[m.S3Key]; ok {
			continue
		}
		seen[m.S3Key] = struct{}{}
		orphaned = append(orphaned, m.S3Key)
	}
	return orphaned
}

// MediaKeys returns the object-store keys referenced by a media list,
// dropping empties and duplicates.
func MediaKeys(media []Media) []string {
	return OrphanedKeys(media, nil)
}

// ScopeKeys splits keys into those under the given owner prefix and those
// outside it. Only in-scope keys may ever be deleted.
func ScopeKeys(keys []string, prefix string) (in, out []string) {
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			in = append(in, k)
		} else {
			out = append(out, k)
		}
	}
	return in, out
}
