package security

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxMessageLength caps visitor messages before sanitization.
const MaxMessageLength = 1000

var (
	// Letters and digits in any script, whitespace and common punctuation.
	// Go's \w is ASCII-only, so Unicode classes are required to keep
	// accented and ligature characters (œ, ë, ï) intact.
	allowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:'"«»\-]`)

	htmlTags  = regexp.MustCompile(`<[^>]*>`)
	artworkID = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)
)

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateSessionID checks that a session identifier is a UUID.
func ValidateSessionID(id string) error {
	if id == "" || len(id) > 100 {
		return &ValidationError{Field: "session_id", Message: "must be between 1 and 100 characters"}
	}
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: "session_id", Message: "must be a valid UUID"}
	}
	return nil
}

// ValidateArtworkID checks the artwork identifier format. An empty id is
// accepted: conversations can start without a selected artwork.
func ValidateArtworkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	if !artworkID.MatchString(id) {
		return &ValidationError{Field: "artwork_id", Message: "must match [a-zA-Z0-9_-]{1,50}"}
	}
	return nil
}

// SanitizeMessage strips HTML tags and characters outside the allowed set
// from a visitor message. Returns an error when nothing readable remains.
func SanitizeMessage(message string) (string, error) {
	if message == "" || len(message) > MaxMessageLength {
		return "", &ValidationError{Field: "message", Message: "must be between 1 and 1000 characters"}
	}

	sanitized := htmlTags.ReplaceAllString(message, "")
	sanitized = allowedChars.ReplaceAllString(sanitized, "")
	sanitized = strings.TrimSpace(sanitized)

	if sanitized == "" {
		return "", &ValidationError{Field: "message", Message: "empty after sanitization"}
	}
	return sanitized, nil
}

// ValidateAudioFilename guards the audio download endpoint against path
// traversal. Only plain .mp3 basenames are accepted.
func ValidateAudioFilename(filename string) (string, error) {
	safe := filepath.Base(filename)

	if !strings.HasSuffix(safe, ".mp3") {
		return "", &ValidationError{Field: "filename", Message: "only .mp3 files are allowed"}
	}
	if strings.HasPrefix(safe, ".") || len(safe) > 100 {
		return "", &ValidationError{Field: "filename", Message: "invalid filename format"}
	}
	if safe != filename {
		return "", &ValidationError{Field: "filename", Message: "path separators are not allowed"}
	}
	return safe, nil
}
