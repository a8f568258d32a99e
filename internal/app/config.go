package app

import (
	"io"
	"os"
)

// RootEnvVar overrides the working directory as the project root.
const RootEnvVar = "PIXELLE_ROOT_PATH"

// Config holds the application configuration
type Config struct {
	// Root is the directory holding the env file. Empty means
	// $PIXELLE_ROOT_PATH, then the working directory.
	Root string

	Debug bool
	Quiet bool

	// Version is reported by the managed server.
	Version string

	Out io.Writer
}

// NewConfig creates a new application configuration
func NewConfig(root string, debug, quiet bool) *Config {
	return &Config{
		Root:    root,
		Debug:   debug,
		Quiet:   quiet,
		Version: "dev",
		Out:     os.Stdout,
	}
}

// ResolveRoot returns the absolute project root for cfg.
func (c *Config) ResolveRoot() (string, error) {
	root := c.Root
	if root == "" {
		root = os.Getenv(RootEnvVar)
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	return absPath(root)
}
