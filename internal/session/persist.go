package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yashas004/persona/internal/progress"
)

// Bundle is the on-disk snapshot of one process run: the full session
// history plus the progress state. History is in-memory by contract; the
// bundle is an optional convenience for carrying progress across restarts.
type Bundle struct {
	SavedAt  time.Time      `json:"saved_at"`
	Progress progress.State `json:"progress"`
	Sessions []Record       `json:"sessions"`
}

// SaveBundle writes the history and progress snapshot as indented JSON to
// path, creating parent directories as needed.
func SaveBundle(path string, history *History, tracker *progress.Tracker) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("session: create bundle dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("session: create bundle file: %w", err)
	}
	defer f.Close()

	bundle := Bundle{
		SavedAt:  time.Now().UTC(),
		Progress: tracker.Snapshot(),
		Sessions: history.All(),
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return fmt.Errorf("session: encode bundle: %w", err)
	}
	return f.Close()
}

// LoadBundle reads a bundle previously written by [SaveBundle].
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("session: open bundle: %w", err)
	}
	defer f.Close()

	var bundle Bundle
	if err := json.NewDecoder(f).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("session: decode bundle: %w", err)
	}
	return &bundle, nil
}
