package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"pixelle/internal/storage"
	"pixelle/pkg/logging"
)

// uploadOverhead is allowed on top of the file size limit for the
// multipart envelope.
const uploadOverhead = 1 << 20

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Pixelle</title></head>
<body>
<h1>Pixelle</h1>
<ul>
<li>MCP endpoint: <code>{{ .Base }}/mcp</code></li>
<li>Workflow engine: <code>{{ .Engine }}</code></li>
<li>Default model: <code>{{ if .Model }}{{ .Model }}{{ else }}none{{ end }}</code></li>
</ul>
</body>
</html>
`))

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/mcp", s.streamable)
	mux.HandleFunc("POST /api/files", s.handleUpload)
	mux.HandleFunc("GET /api/files/{id}", s.handleFile)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	settings := s.Settings()
	if !settings.WebUIEnabled {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, map[string]string{
		"Base":   settings.ReadURL(),
		"Engine": settings.Config.Engine.Endpoint,
		"Model":  settings.DefaultModel(),
	})
	if err != nil {
		logging.Error("Server", err, "Failed to render index")
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Instance string `json:"instance"`
	Version  string `json:"version"`
	Config   string `json:"config"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Instance: s.instanceID,
		Version:  s.version,
		Config:   string(s.store.Status()),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	files := s.files()
	maxSize := s.Settings().MaxFileSize
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+uploadOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "missing multipart field \"file\"")
		return
	}
	defer file.Close()

	info, err := files.Save(file, header.Filename)
	if err != nil {
		var tooLarge *storage.TooLargeError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		logging.Error("Server", err, "Upload of %s failed", header.Filename)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.files().Open(r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		logging.Error("Server", err, "Failed to open %s", r.PathValue("id"))
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	w.Header().Set("Content-Type", info.ContentType)
	http.ServeContent(w, r, info.ID, fi.ModTime(), f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Server", "Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
