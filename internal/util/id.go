package util

import (
	"crypto/rand"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateShortID returns a 8-character lowercase alphanumeric string using
// cryptographic randomness.
func GenerateShortID() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i := range bytes {
		bytes[i] = alphanumeric[int(bytes[i])%len(alphanumeric)]
	}

	return string(bytes), nil
}

// NewTaskID returns a task id of the form task-<uuid>.
func NewTaskID() string {
	return "task-" + uuid.NewString()
}

// Slugify converts a title to a snake_case file name fragment.
// It lowercases the string, turns spaces, hyphens and underscores into
// underscores, drops other characters, collapses repeats and trims the ends.
func Slugify(s string) string {
	var result strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(unicode.ToLower(r))
		} else if r == ' ' || r == '_' || r == '-' {
			result.WriteRune('_')
		}
	}

	str := result.String()
	for strings.Contains(str, "__") {
		str = strings.ReplaceAll(str, "__", "_")
	}

	return strings.Trim(str, "_")
}
