package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nissyi-gh/stickies/internal/model"
	"github.com/tidwall/jsonc"
)

const (
	// FileName is the name of the notes document in the default location.
	FileName = "notes.json"
	// AppFolder is the per-user config folder used outside packaged mode.
	AppFolder = "StickyNotes"
)

// Packaged switches the default location to the directory of the
// executable. Release builds set it with
//
//	-ldflags "-X github.com/nissyi-gh/stickies/internal/store.Packaged=true"
var Packaged = "false"

// NoteStore reads and writes notes as a single JSON document.
type NoteStore struct {
	path   string
	logger *slog.Logger
}

type document struct {
	Notes []*model.Note `json:"notes"`
}

// Option configures a NoteStore.
type Option func(*NoteStore)

// WithLogger sets the logger used to report swallowed load failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *NoteStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DefaultPath returns the default notes file location, creating its
// directory if needed. In packaged mode (or when portable is set) the
// file lives next to the executable; otherwise under the user config
// directory.
func DefaultPath(portable bool) (string, error) {
	return defaultPath(portable || Packaged == "true", os.Executable, os.UserConfigDir)
}

func defaultPath(packaged bool, executable, configDir func() (string, error)) (string, error) {
	var dir string
	if packaged {
		exe, err := executable()
		if err != nil {
			return "", fmt.Errorf("locate executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir = filepath.Dir(exe)
	} else {
		base, err := configDir()
		if err != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, AppFolder)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// New returns a store bound to path. An empty path selects DefaultPath(false).
func New(path string, opts ...Option) (*NoteStore, error) {
	if path == "" {
		var err error
		path, err = DefaultPath(false)
		if err != nil {
			return nil, fmt.Errorf("determine notes path: %w", err)
		}
	}
	s := &NoteStore{path: path, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the default location this store reads and writes.
func (s *NoteStore) Path() string {
	return s.path
}

// Exists reports whether the default location holds a notes file.
func (s *NoteStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads notes from the default location.
func (s *NoteStore) Load() []*model.Note {
	return s.LoadFrom(s.path)
}

// LoadFrom reads notes from path. A missing, unreadable or malformed
// file yields an empty collection; failures are logged, never returned.
func (s *NoteStore) LoadFrom(path string) []*model.Note {
	notes, err := readDocument(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("discarding unreadable notes file", "path", path, "error", err)
		}
		return []*model.Note{}
	}
	s.logger.Debug("loaded notes", "path", path, "count", len(notes))
	return notes
}

// Save writes notes to the default location.
func (s *NoteStore) Save(notes []*model.Note) error {
	return s.SaveTo(s.path, notes)
}

// SaveTo writes notes to path, creating parent directories as needed.
func (s *NoteStore) SaveTo(path string, notes []*model.Note) error {
	data, err := encodeDocument(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create notes dir: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	s.logger.Debug("saved notes", "path", path, "count", len(notes))
	return nil
}

func readDocument(path string) ([]*model.Note, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	notes := make([]*model.Note, 0, len(doc.Notes))
	for _, n := range doc.Notes {
		if n != nil {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func encodeDocument(notes []*model.Note) ([]byte, error) {
	doc := document{Notes: notes}
	if doc.Notes == nil {
		doc.Notes = []*model.Note{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temporary file in the same directory
// and renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary notes file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temporary notes file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temporary notes file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temporary notes file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temporary notes file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename notes file into place: %w", err)
	}
	return nil
}
