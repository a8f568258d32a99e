// Package storage keeps uploaded files in a content-addressed directory.
//
// A file id is the hex sha256 of its content followed by the original
// extension, so storing the same bytes twice yields the same id and a
// single copy on disk.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"pixelle/pkg/logging"
)

// DownloadTimeout bounds SaveURL.
const DownloadTimeout = 30 * time.Second

var (
	// ErrNotFound is returned for ids with no stored file.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidID is returned for ids that are not of the form <sha256><ext>.
	ErrInvalidID = errors.New("invalid file id")
)

// TooLargeError reports a file over the configured size limit.
type TooLargeError struct {
	Name  string
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file %s exceeds the maximum size of %d bytes", e.Name, e.Limit)
}

var idPattern = regexp.MustCompile(`^[0-9a-f]{64}(\.[A-Za-z0-9]{1,16})?$`)

// FileInfo describes a stored file.
type FileInfo struct {
	ID          string `json:"id" yaml:"id"`
	Filename    string `json:"filename" yaml:"filename"`
	ContentType string `json:"content_type" yaml:"content_type"`
	Size        int64  `json:"size" yaml:"size"`
	URL         string `json:"url" yaml:"url"`
}

// Store is a directory of content-addressed files.
type Store struct {
	dir     string
	maxSize int64
	readURL string
	client  *http.Client
}

// Option configures a Store.
type Option func(*Store)

// WithMaxSize sets the per-file size limit. Zero or less disables it.
func WithMaxSize(n int64) Option {
	return func(s *Store) {
		s.maxSize = n
	}
}

// WithReadURL sets the base URL links are built from.
func WithReadURL(base string) Option {
	return func(s *Store) {
		s.readURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets the client used by SaveURL.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		s.client = c
	}
}

// New returns a Store rooted at dir. The directory is created on first
// write.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// URL returns the link for id.
func (s *Store) URL(id string) string {
	return s.readURL + "/api/files/" + id
}

// SaveBytes stores data under the id derived from its content.
func (s *Store) SaveBytes(data []byte, filename string) (FileInfo, error) {
	return s.Save(bytes.NewReader(data), filename)
}

// SaveFile copies the file at p into the store.
func (s *Store) SaveFile(p string) (FileInfo, error) {
	f, err := os.Open(p)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer f.Close()
	return s.Save(f, filepath.Base(p))
}

// SaveURL downloads u into the store.
func (s *Store) SaveURL(ctx context.Context, u string) (FileInfo, error) {
	parsed, err := url.Parse(u)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return FileInfo{}, fmt.Errorf("unsupported URL %q", u)
	}

	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to build request for %s: %w", u, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to download %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return FileInfo{}, fmt.Errorf("failed to download %s: status %d", u, resp.StatusCode)
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		name = "download"
	}
	if filepath.Ext(name) == "" {
		if exts, _ := mime.ExtensionsByType(resp.Header.Get("Content-Type")); len(exts) > 0 {
			name += exts[0]
		}
	}
	return s.Save(resp.Body, name)
}

// Save streams r into the store, enforcing the size limit.
func (s *Store) Save(r io.Reader, filename string) (FileInfo, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return FileInfo{}, fmt.Errorf("failed to create storage directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create temp file in %s: %w", s.dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	h := sha256.New()
	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to store %s: %w", filename, err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return FileInfo{}, &TooLargeError{Name: filename, Limit: s.maxSize}
	}

	id := hex.EncodeToString(h.Sum(nil)) + normalizeExt(filename)
	if err := os.Rename(tmpName, filepath.Join(s.dir, id)); err != nil {
		return FileInfo{}, fmt.Errorf("failed to store %s: %w", filename, err)
	}

	logging.Debug("Storage", "Stored %s as %s (%d bytes)", filename, id, n)
	return FileInfo{
		ID:          id,
		Filename:    filename,
		ContentType: ContentType(id),
		Size:        n,
		URL:         s.URL(id),
	}, nil
}

// Path returns the on-disk path for id.
func (s *Store) Path(id string) (string, error) {
	if !idPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id), nil
}

// Stat returns the info for a stored id.
func (s *Store) Stat(id string) (FileInfo, error) {
	p, err := s.Path(id)
	if err != nil {
		return FileInfo{}, err
	}
	fi, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{ID: id, Filename: id, ContentType: ContentType(id), Size: fi.Size(), URL: s.URL(id)}, nil
}

// Open opens a stored file for reading.
func (s *Store) Open(id string) (*os.File, FileInfo, error) {
	info, err := s.Stat(id)
	if err != nil {
		return nil, FileInfo{}, err
	}
	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		return nil, FileInfo{}, err
	}
	return f, info, nil
}

// Delete removes a stored file. Deleting a missing id is not an error.
func (s *Store) Delete(id string) error {
	p, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ContentType guesses the MIME type from the id's extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func normalizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !idPattern.MatchString(strings.Repeat("0", 64)+ext) {
		return ""
	}
	return ext
}
