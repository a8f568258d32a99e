package provider

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNoModels is returned when a model list has no entries.
	ErrNoModels = errors.New("at least one model is required")
	// ErrEmptyModel is returned for an empty entry such as "a,,b".
	ErrEmptyModel = errors.New("model names must not be empty")
)

// DuplicateModelError is returned when a model appears twice.
type DuplicateModelError struct {
	Model string
}

func (e *DuplicateModelError) Error() string {
	return fmt.Sprintf("model %q is listed more than once", e.Model)
}

// ParseModels splits a comma separated model list, trimming whitespace.
// Empty entries and duplicates are rejected.
func ParseModels(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrNoModels
	}
	parts := strings.Split(s, ",")
	models := make([]string, 0, len(parts))
	for _, p := range parts {
		m := strings.TrimSpace(p)
		if m == "" {
			return nil, ErrEmptyModel
		}
		if slices.Contains(models, m) {
			return nil, &DuplicateModelError{Model: m}
		}
		models = append(models, m)
	}
	return models, nil
}

// SplitModels is the lenient reader used for persisted values: entries
// are trimmed and empty ones dropped.
func SplitModels(s string) []string {
	var models []string
	for _, p := range strings.Split(s, ",") {
		if m := strings.TrimSpace(p); m != "" {
			models = append(models, m)
		}
	}
	return models
}

// JoinModels is the inverse of ParseModels.
func JoinModels(models []string) string {
	return strings.Join(models, ",")
}

// Partition splits discovered models into the provider's recommended models
// that are present (in recommendation order) and the rest (in discovery
// order).
func (s Spec) Partition(found []string) (recommended, others []string) {
	for _, r := range s.Recommended {
		if slices.Contains(found, r) {
			recommended = append(recommended, r)
		}
	}
	for _, m := range found {
		if !slices.Contains(recommended, m) {
			others = append(others, m)
		}
	}
	return recommended, others
}

// IsRecommended reports whether model is one of the provider's recommended models.
func (s Spec) IsRecommended(model string) bool {
	return slices.Contains(s.Recommended, model)
}
