// Package isgl derives stable ISGL1 identifiers for extracted entities.
//
// An ISGL1 key is a deterministic, human-readable string of the form
//
//	language:kind:qualified-name:path:start-end
//
// Regenerating the key for an unchanged entity always yields byte-identical
// output, which downstream consumers rely on for diffing across re-index runs.
package isgl

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
)

// Key is a fully formed ISGL1 identifier.
type Key string

// Generate derives the ISGL1 key for an entity. Pure: the same entity always
// yields the same key, and any change to name, kind, path, or line range
// yields a different one.
func Generate(e entity.Entity) Key {
	return Key(fmt.Sprintf("%s:%s:%s:%s:%d-%d",
		e.Language,
		e.Kind,
		sanitize(e.QualifiedName()),
		sanitize(e.FilePath),
		e.LineRange.Start,
		e.LineRange.End,
	))
}

// sanitize keeps the key's colon-delimited structure unambiguous.
func sanitize(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NormalizePath converts an absolute or host-native path into the canonical
// repository-relative, forward-slash form used in keys, so keys are identical
// across platforms.
func NormalizePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	return strings.TrimPrefix(rel, "./")
}

// CollisionError reports a duplicate key within one extraction batch. The
// colliding entity is dropped; siblings in the same file are unaffected.
type CollisionError struct {
	Key Key
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("isgl1 key collision: %s", e.Key)
}

// Batch tracks keys issued during a single extraction pass so duplicates are
// detected instead of silently overwriting. Overloaded same-named entities at
// distinct lines never collide because the line span is part of every key; a
// collision therefore means two entities are indistinguishable by language,
// kind, qualified name, path, and span.
type Batch struct {
	seen map[Key]struct{}
}

// NewBatch creates an empty collision-tracking batch.
func NewBatch() *Batch {
	return &Batch{seen: make(map[Key]struct{})}
}

// Add generates the key for an entity and records it. Returns a
// *CollisionError if an identical key was already issued in this batch.
func (b *Batch) Add(e entity.Entity) (Key, error) {
	key := Generate(e)
	if _, dup := b.seen[key]; dup {
		return "", &CollisionError{Key: key}
	}
	b.seen[key] = struct{}{}
	return key, nil
}

// Len returns the number of keys issued so far.
func (b *Batch) Len() int {
	return len(b.seen)
}
