package token

import "errors"

// ErrNotFound is returned by a Repo when no value is stored under a key.
var ErrNotFound = errors.New("not found")

// Repo is the persistent key/value storage behind the Store.
type Repo interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
