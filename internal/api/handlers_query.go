package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docvoice/internal/pipeline"
)

const (
	documentsField = "pdfs"
	questionField  = "query"
)

func (s *Server) handleQueryPreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST,OPTIONS")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	docs, question, err := readQueryForm(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.pipeline.HandleQuery(r.Context(), docs, question)
	if err != nil {
		jsonError(w, err.Error(), pipeline.StatusCode(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// readQueryForm collects the uploaded documents in form order and the
// question. A body that is not multipart carries no documents.
func readQueryForm(r *http.Request) ([]pipeline.Document, string, error) {
	err := r.ParseMultipartForm(32 << 20)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, r.PostFormValue(questionField), nil
	}
	if err != nil {
		return nil, "", err
	}
	defer r.MultipartForm.RemoveAll()

	var docs []pipeline.Document
	for _, fh := range r.MultipartForm.File[documentsField] {
		f, err := fh.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		docs = append(docs, pipeline.Document{Name: sanitizeFilename(fh.Filename), Data: data})
	}
	return docs, r.FormValue(questionField), nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
