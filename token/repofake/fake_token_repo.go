package tokenfakerepo

import (
	"errors"
	"sync"

	"github.com/jrsteele09/go-affiliate-portal/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

// ErrUnavailable simulates storage that cannot be reached.
var ErrUnavailable = errors.New("storage unavailable")

type FakeTokenRepo struct {
	values      map[string]string
	unavailable bool
	writes      int
	lock        sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		values: make(map[string]string),
	}
}

func (tr *FakeTokenRepo) Get(key string) (string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	if tr.unavailable {
		return "", ErrUnavailable
	}
	value, ok := tr.values[key]
	if !ok {
		return "", token.ErrNotFound
	}
	return value, nil
}

func (tr *FakeTokenRepo) Set(key, value string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.unavailable {
		return ErrUnavailable
	}
	tr.values[key] = value
	tr.writes++
	return nil
}

func (tr *FakeTokenRepo) Delete(key string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.unavailable {
		return ErrUnavailable
	}
	if _, ok := tr.values[key]; !ok {
		return token.ErrNotFound
	}
	delete(tr.values, key)
	tr.writes++
	return nil
}

// SetUnavailable makes every call fail until reset.
func (tr *FakeTokenRepo) SetUnavailable(unavailable bool) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.unavailable = unavailable
}

// Writes counts successful Set and Delete calls.
func (tr *FakeTokenRepo) Writes() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.writes
}
