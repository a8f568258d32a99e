package config

import (
	"pixelle/internal/envstore"
	"pixelle/internal/provider"
	"pixelle/pkg/logging"
)

// DetectStatus classifies the env file. It never fails: an unreadable
// file is reported as incomplete.
func DetectStatus(env *envstore.Store) Status {
	if !env.Exists() {
		return StatusFirstTime
	}

	values, err := env.Read()
	if err != nil {
		logging.Warn("Config", "Cannot read %s, treating configuration as incomplete: %v", env.Path(), err)
		return StatusIncomplete
	}
	return StatusOf(values)
}

// StatusOf classifies parsed env values of an existing file.
func StatusOf(values map[string]string) Status {
	if values[KeyEngineBaseURL] == "" {
		return StatusIncomplete
	}
	for _, key := range provider.CredentialKeys() {
		if values[key] != "" {
			return StatusComplete
		}
	}
	return StatusIncomplete
}
