package app

import (
	"fmt"
	"strings"

	"pixelle/internal/config"
)

// ConfigNotReadyError is returned by operations that need a complete
// configuration.
type ConfigNotReadyError struct {
	Status      config.Status
	Path        string
	Suggestions []string
}

// NewConfigNotReadyError builds the error with guidance for status.
func NewConfigNotReadyError(status config.Status, path string) *ConfigNotReadyError {
	e := &ConfigNotReadyError{Status: status, Path: path}
	if status == config.StatusFirstTime {
		e.Suggestions = []string{
			"Run 'pixelle reconfig' to configure first",
			"Or run 'pixelle' for interactive setup",
		}
	} else {
		e.Suggestions = []string{
			"Run 'pixelle reconfig' to fix the configuration",
			"Or run 'pixelle manual' to edit it by hand",
		}
	}
	return e
}

func (e *ConfigNotReadyError) Error() string {
	if e.Status == config.StatusFirstTime {
		return fmt.Sprintf("no configuration found at %s", e.Path)
	}
	return fmt.Sprintf("configuration at %s is incomplete", e.Path)
}

// DetailedError returns the message followed by the suggestions.
func (e *ConfigNotReadyError) DetailedError() string {
	parts := []string{e.Error()}
	for _, s := range e.Suggestions {
		parts = append(parts, "  - "+s)
	}
	return strings.Join(parts, "\n")
}
