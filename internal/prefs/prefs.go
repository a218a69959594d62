// Package prefs remembers the submit form's last-used mode and fairness bands.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
)

// Prefs is the persisted form state.
type Prefs struct {
	Mode  tracker.Mode     `yaml:"mode,omitempty"`
	Bands []statusapi.Band `yaml:"bands,omitempty"`
}

// Store reads and writes Prefs as YAML at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store at path. An empty path uses DefaultPath.
func NewStore(path string) (*Store, error) {
	if path == "" {
		var err error

		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	return &Store{path: path}, nil
}

// Load reads the stored preferences. A missing file yields empty Prefs.
func (s *Store) Load() (Prefs, error) {
	var p Prefs

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}

	if err != nil {
		return p, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}

	if p.Mode != "" {
		if _, err := tracker.ParseMode(string(p.Mode)); err != nil {
			return Prefs{}, fmt.Errorf("parse preferences %s: %w", s.path, err)
		}
	}

	return p, nil
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Save replaces the stored preferences.
func (s *Store) Save(p Prefs) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}

	return nil
}

// Remember stores the form's mode, and its bands when in fairness mode. Bands saved
// earlier are kept while the form is in priority mode.
func (s *Store) Remember(mode tracker.Mode, bands []statusapi.Band) error {
	p, err := s.Load()
	if err != nil {
		// an unreadable file is replaced
		p = Prefs{}
	}

	p.Mode = mode
	if mode == tracker.ModeFairness {
		p.Bands = append([]statusapi.Band(nil), bands...)
	}

	return s.Save(p)
}

// DefaultPath is prefs.yaml under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}

	return filepath.Join(dir, appDir, fileName), nil
}

const (
	appDir   = "fairwatch"
	dirPerm  = 0o755
	fileName = "prefs.yaml"
	filePerm = 0o644
)
