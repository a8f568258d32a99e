package config

import (
	"fmt"
	"strings"
)

// PersistError is returned when the env file cannot be written. The
// previous file, if any, is left untouched.
type PersistError struct {
	Path        string
	Err         error
	Suggestions []string
}

// NewPersistError wraps err with the default guidance.
func NewPersistError(path string, err error) *PersistError {
	return &PersistError{
		Path: path,
		Err:  err,
		Suggestions: []string{
			"Check that the directory is writable",
			"Re-run 'pixelle reconfig' once the problem is fixed",
		},
	}
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save configuration to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// DetailedError returns a multi-line message with suggestions.
func (e *PersistError) DetailedError() string {
	parts := []string{
		"Configuration could not be saved",
		fmt.Sprintf("  File: %s", e.Path),
		fmt.Sprintf("  Error: %v", e.Err),
	}
	if len(e.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range e.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}
	return strings.Join(parts, "\n")
}
