// Package keys derives object storage keys for published snapshots.
package keys

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	snapshotPrefix = "snapshots"
	latestPrefix   = "latest"
	timestampFmt   = "20060102T150405Z"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Snapshot returns the key of file inside the snapshot folder for a run published at
// publishedAt, e.g. snapshots/20261017T093000Z-<id>/index.html.
func Snapshot(publishedAt time.Time, id, file string) string {
	folder := fmt.Sprintf("%s-%s", publishedAt.UTC().Format(timestampFmt), sanitizeKey(id))
	return path.Join(snapshotPrefix, folder, sanitizeKey(file))
}

// Latest returns the key of file in the folder that always holds the newest snapshot.
func Latest(file string) string {
	return path.Join(latestPrefix, sanitizeKey(file))
}
