package markdown

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ReadFile reads a markdown file. Content that is not valid UTF-8 is decoded
// as Latin-1, which maps every byte to a rune.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("markdown file not found: %s: %w", path, err)
		}
		return "", fmt.Errorf("failed to read markdown file: %w", err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String(), nil
}

// Convert parses and validates a task document.
func Convert(content string) (*Document, error) {
	doc, err := Parse(content)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ConvertFile converts the markdown file at path. When outputPath is set the
// document is also written there as indented JSON.
func ConvertFile(path, outputPath string) (*Document, error) {
	content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Convert(content)
	if err != nil {
		return nil, err
	}

	if outputPath != "" {
		if err := WriteJSON(doc, outputPath); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// WriteJSON writes doc to path as indented JSON, creating parent directories.
func WriteJSON(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// LoadJSON reads a converted document back from disk, checking it against
// the schema first.
func LoadJSON(data []byte) (*Document, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc.normalize()
	return &doc, nil
}
