package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"metastore-scraper/models"
)

var _ RecordWriter = (*JSONWriter)(nil)

// JSONWriter writes a batch as an indented UTF-8 JSON array.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a writer targeting path. Intermediate directories
// are created on Write.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Write replaces the file with records. The file is written to a temporary
// sibling first so a failed write never leaves a truncated array behind.
func (w *JSONWriter) Write(records []*models.Record) error {
	if records == nil {
		records = []*models.Record{}
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("json: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: encode %d records: %w", len(records), err)
	}
	// CreateTemp opens the file 0600 and Rename keeps that mode.
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("json: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("json: replace %q: %w", w.path, err)
	}
	return nil
}
