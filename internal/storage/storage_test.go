package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func TestSaveBytes_ContentAddressed(t *testing.T) {
	s := New(t.TempDir(), WithReadURL("http://localhost:9004/"))

	info, err := s.SaveBytes([]byte("hello"), "Greeting.TXT")
	require.NoError(t, err)
	assert.Equal(t, sum("hello")+".txt", info.ID)
	assert.Equal(t, "Greeting.TXT", info.Filename)
	assert.Equal(t, int64(5), info.Size)
	assert.True(t, strings.HasPrefix(info.ContentType, "text/plain"))
	assert.Equal(t, "http://localhost:9004/api/files/"+info.ID, info.URL)

	again, err := s.SaveBytes([]byte("hello"), "other.txt")
	require.NoError(t, err)
	assert.Equal(t, info.ID, again.ID)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSave_NoExtension(t *testing.T) {
	s := New(t.TempDir())
	info, err := s.SaveBytes([]byte("x"), "blob")
	require.NoError(t, err)
	assert.Equal(t, sum("x"), info.ID)
	assert.Equal(t, "application/octet-stream", info.ContentType)
}

func TestSave_TooLarge(t *testing.T) {
	s := New(t.TempDir(), WithMaxSize(4))

	_, err := s.SaveBytes([]byte("12345"), "big.bin")
	var tooLarge *TooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(4), tooLarge.Limit)

	_, err = s.SaveBytes([]byte("1234"), "ok.bin")
	assert.NoError(t, err)
}

func TestSaveFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(src, []byte("png-bytes"), 0o644))

	s := New(t.TempDir())
	info, err := s.SaveFile(src)
	require.NoError(t, err)
	assert.Equal(t, sum("png-bytes")+".png", info.ID)
	assert.Equal(t, "image/png", info.ContentType)

	_, err = s.SaveFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/out/result.jpg":
			w.Write([]byte("jpeg"))
		case "/render":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := New(t.TempDir())
	ctx := context.Background()

	info, err := s.SaveURL(ctx, srv.URL+"/out/result.jpg")
	require.NoError(t, err)
	assert.Equal(t, sum("jpeg")+".jpg", info.ID)

	info, err = s.SaveURL(ctx, srv.URL+"/render")
	require.NoError(t, err)
	assert.Equal(t, sum("png")+".png", info.ID)

	_, err = s.SaveURL(ctx, srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	_, err = s.SaveURL(ctx, "file:///etc/passwd")
	assert.Error(t, err)
}

func TestOpenStatDelete(t *testing.T) {
	s := New(t.TempDir())
	info, err := s.SaveBytes([]byte("data"), "a.json")
	require.NoError(t, err)

	f, got, err := s.Open(info.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))
	assert.Equal(t, "application/json", got.ContentType)

	require.NoError(t, s.Delete(info.ID))
	require.NoError(t, s.Delete(info.ID))

	_, err = s.Stat(info.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPath_RejectsTraversal(t *testing.T) {
	s := New(t.TempDir())
	for _, id := range []string{"../.env", "abc", sum("x") + "/../../etc", ""} {
		_, err := s.Path(id)
		assert.True(t, errors.Is(err, ErrInvalidID), "id %q", id)
	}
}
