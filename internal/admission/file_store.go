package admission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"intake/internal/apperr"
)

// FileStore keeps every record in a single JSON array on disk. Each
// operation reads the whole file and writes reuse the full snapshot.
//
// mu serialises read-modify-write cycles inside this process only. Two
// processes sharing the file can still lose updates (last writer wins).
type FileStore struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

// NewFileStore creates the data directory and an empty array file if they
// are missing.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperr.IO("filestore.init", fmt.Errorf("create data dir: %w", err))
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeJSON(path, []Record{}); err != nil {
			return nil, apperr.IO("filestore.init", err)
		}
	}
	return &FileStore{path: path, log: logger}, nil
}

func (s *FileStore) Append(_ context.Context, r Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	records = append(records, r)
	if err := writeJSON(s.path, records); err != nil {
		return Record{}, apperr.IO("filestore.append", err)
	}
	return r, nil
}

func (s *FileStore) FindByID(_ context.Context, id string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	if i := indexOf(records, id); i >= 0 {
		return records[i], true, nil
	}
	return Record{}, false, nil
}

func (s *FileStore) FindAllByField(_ context.Context, field Field, value string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filterByField(s.load(), field, value), nil
}

func (s *FileStore) UpdateByID(_ context.Context, id string, patch Patch) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	i := indexOf(records, id)
	if i < 0 {
		return Record{}, false, nil
	}
	patch.Apply(&records[i])
	if err := writeJSON(s.path, records); err != nil {
		return Record{}, false, apperr.IO("filestore.update", err)
	}
	return records[i], true, nil
}

func (s *FileStore) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(), nil
}

// load never fails: a missing or unparsable file reads as an empty
// sequence, and the next write replaces whatever was on disk.
func (s *FileStore) load() []Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn("admissions file unreadable, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return []Record{}
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("admissions file unparsable, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return []Record{}
	}
	if records == nil {
		records = []Record{}
	}
	return records
}

const storeFileMode os.FileMode = 0o644

// writeJSON writes v indented to a temp file and renames it over path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	// CreateTemp opens 0600; the store file keeps the usual 0644.
	if err := tmp.Chmod(storeFileMode); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
