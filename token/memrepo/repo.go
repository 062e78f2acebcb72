// Package memrepo keeps credentials in process memory. Values are lost on restart.
package memrepo

import (
	"sync"

	"github.com/jrsteele09/go-affiliate-portal/token"
)

var _ token.Repo = (*Repo)(nil)

type Repo struct {
	mu     sync.RWMutex
	values map[string]string
}

func New() *Repo {
	return &Repo{values: make(map[string]string)}
}

func (r *Repo) Get(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[key]
	if !ok {
		return "", token.ErrNotFound
	}
	return value, nil
}

func (r *Repo) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *Repo) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[key]; !ok {
		return token.ErrNotFound
	}
	delete(r.values, key)
	return nil
}
