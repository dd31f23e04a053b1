// Package fileid derives stable record IDs for knowledge-base entries seeded from files.
package fileid

import (
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// namespace scopes the name-based UUIDs so they cannot collide with other UUIDv5 users.
var namespace = uuid.MustParse("6f1c2a5e-9b0d-4c3e-8a47-2d5f1e0b7c93")

// EntryID returns a UUIDv5 for the entry at position index of the file at path.
// The same path and index always yield the same ID, so re-seeding a file replaces its records.
func EntryID(path string, index int) string {
	name := filepath.Clean(path) + "#" + strconv.Itoa(index)
	return uuid.NewSHA1(namespace, []byte(name)).String()
}
