// Package filerepo stores credentials in a JSON document on disk so that a
// CLI session survives between invocations.
package filerepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-affiliate-portal/token"
)

// DefaultFileName is the document created inside the data folder.
const DefaultFileName = "session.json"

var _ token.Repo = (*FileRepo)(nil)

// FileRepo is a token.Repo persisted as a flat JSON object.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

// New creates a FileRepo writing to path. The file is created lazily.
func New(path string) *FileRepo {
	return &FileRepo{path: path}
}

// NewInFolder creates a FileRepo for DefaultFileName inside folder.
func NewInFolder(folder string) *FileRepo {
	return New(filepath.Join(folder, DefaultFileName))
}

// Path returns the backing file location.
func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Get(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", token.ErrNotFound
	}
	return value, nil
}

func (r *FileRepo) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	values[key] = value
	return r.save(values)
}

func (r *FileRepo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return token.ErrNotFound
	}
	delete(values, key)
	if len(values) == 0 {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("[FileRepo.Delete] remove: %w", err)
		}
		return nil
	}
	return r.save(values)
}

func (r *FileRepo) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileRepo] read %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("[FileRepo] decode %s: %w", r.path, err)
	}
	return values, nil
}

// save writes through a temp file and rename so readers never see a partial document.
func (r *FileRepo) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("[FileRepo] mkdir: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileRepo] encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("[FileRepo] create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileRepo] write temp: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileRepo] chmod temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileRepo] close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("[FileRepo] rename: %w", err)
	}
	return nil
}
