// Package envstore reads and writes the flat KEY=VALUE file that holds
// pixelle's persisted configuration.
//
// Parsing is lenient: blank lines and '#' comments are skipped, lines
// without '=' are ignored and surrounding quote characters are stripped
// from values. Double-quoted values use Go escapes, so \" and \\ inside
// them are unescaped. Writes replace the whole file atomically.
package envstore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pixelle/pkg/logging"
)

// FileName is the name of the env file inside the project root.
const FileName = ".env"

// Store is the durable-state boundary: a single env file on disk.
type Store struct {
	path string
}

// New returns a Store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// ForRoot returns a Store for <root>/.env.
func ForRoot(root string) *Store {
	return New(filepath.Join(root, FileName))
}

// Path returns the absolute (or caller-supplied) path of the env file.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the env file is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Read parses the env file. A missing file returns fs.ErrNotExist wrapped
// with the path.
func (s *Store) Read() (map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	values, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	logging.Debug("EnvStore", "Read %d keys from %s", len(values), s.path)
	return values, nil
}

// Write replaces the env file with content. The data is written to a
// temporary file in the same directory, synced, and renamed over the
// target so readers never observe a partial file.
func (s *Store) Write(content []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".env.tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	logging.Debug("EnvStore", "Wrote %d bytes to %s", len(content), s.path)
	return nil
}

// Snapshot returns the raw file bytes, or nil if the file does not exist.
// Used to compare the file before and after an operation.
func (s *Store) Snapshot() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Parse reads KEY=VALUE lines from r.
func Parse(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		key, value, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(content string) map[string]string {
	values, _ := Parse(bytes.NewBufferString(content))
	return values
}

// ParseLine splits a single line. ok is false for blank lines, comments,
// lines without '=' and lines with an empty key.
func ParseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, Unquote(strings.TrimSpace(value)), true
}

// Unquote strips surrounding quotes. A double-quoted value is unescaped
// with Go string syntax, the format the persister writes; one that does
// not parse keeps its content as is.
func Unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		if s, err := strconv.Unquote(value); err == nil {
			return s
		}
	}
	return strings.Trim(value, `"'`)
}
