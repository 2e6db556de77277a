package utils

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// Only audio and video containers are accepted for upload.
var allowedExtensions = map[string]bool{
	"mp4": true,
	"mp3": true,
	"wav": true,
}

// contentTypes maps allowed extensions to the type served on download. A fixed
// map avoids depending on the host's mime registry.
var contentTypes = map[string]string{
	"mp3": "audio/mpeg",
	"mp4": "video/mp4",
	"wav": "audio/wav",
}

var (
	stripPolicy  = bluemonday.StrictPolicy()
	unsafeChars  = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	repeatedDots = regexp.MustCompile(`\.{2,}`)
)

// FileExtension returns the lowercased substring after the last dot, or ""
// when the name has no dot.
func FileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// AllowedFile reports whether the filename carries an accepted media extension.
// Names without a dot are rejected.
func AllowedFile(name string) bool {
	return allowedExtensions[FileExtension(name)]
}

// ContentTypeForKey returns the download content type for a storage key based
// on its extension, defaulting to a generic binary type.
func ContentTypeForKey(key string) string {
	if ct, ok := contentTypes[FileExtension(key)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// SanitizeFilename reduces a client-supplied filename to a safe display name:
// markup is removed, path components are stripped, spaces become underscores
// and anything outside [A-Za-z0-9_.-] is dropped. The result is metadata only;
// bytes are stored under the random storage key, never under this name.
func SanitizeFilename(name string) string {
	// Markup goes first: a '/' inside a tag would otherwise truncate the
	// name at the path split. The sanitizer entity-escapes remaining text,
	// so undo that before the charset filter sees it.
	name = stripPolicy.Sanitize(name)
	name = html.UnescapeString(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = repeatedDots.ReplaceAllString(name, ".")
	name = strings.Trim(name, "._-")
	if name == "" {
		name = "file"
	}
	return name
}

// NewStorageKey generates a collision-resistant random storage key that
// preserves the original file's extension. Uniqueness is probabilistic by
// construction (UUIDv4), not enforced by any table constraint.
func NewStorageKey(originalName string) string {
	return uuid.New().String() + "." + FileExtension(originalName)
}
