package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"MySketchBoard/internal/match"
	"MySketchBoard/internal/raster"
)

// Store writes saved sketches to a directory as <id>.png next to <id>.json,
// the feature list the library indexes.
type Store struct {
	dir   string
	newID func() string
}

// NewStore creates dir when needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("server: create storage dir: %w", err)
	}
	return &Store{dir: dir, newID: uuid.NewString}, nil
}

// Dir is the storage directory.
func (s *Store) Dir() string { return s.dir }

// Save checks that dataURL holds a PNG image and writes it with its features
// under a fresh id.
func (s *Store) Save(dataURL string, features []match.Feature) (string, error) {
	mime, data, err := raster.DecodeDataURL(dataURL)
	if err != nil {
		return "", &inputError{err}
	}
	if mime != "image/png" {
		return "", &inputError{fmt.Errorf("server: expected image/png, got %q", mime)}
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", &inputError{fmt.Errorf("server: bad png: %w", err)}
	}
	if features == nil {
		features = []match.Feature{}
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("server: encode features: %w", err)
	}

	id := s.newID()
	imgPath := filepath.Join(s.dir, id+".png")
	if err := os.WriteFile(imgPath, data, 0o644); err != nil {
		_ = os.Remove(imgPath)
		return "", fmt.Errorf("server: write image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, id+".json"), encoded, 0o644); err != nil {
		// A sketch without features is never indexed.
		_ = os.Remove(imgPath)
		return "", fmt.Errorf("server: write features: %w", err)
	}
	return id, nil
}

// inputError marks a request the client has to fix.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }
