package token

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// DefaultKey is the storage key the bearer credential lives under.
const DefaultKey = "affiliate_portal_token"

// ErrNoCredential is returned by the TokenSource when nothing is stored.
var ErrNoCredential = errors.New("no credential stored")

// Store keeps the bearer credential in a Repo under a single key.
// A Store without a Repo behaves as if nothing is ever stored, which matches
// contexts that have no persistent storage at all.
type Store struct {
	repo   Repo
	key    string
	logger zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger sets the logger used to report storage failures.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store backed by repo. repo may be nil.
func NewStore(repo Repo, options ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		key:    DefaultKey,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Get returns the stored credential. Storage errors are logged and reported as absent.
func (s *Store) Get() (string, bool) {
	if s.repo == nil {
		return "", false
	}
	value, err := s.repo.Get(s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", s.key).Msg("token store read failed")
		}
		return "", false
	}
	if value == "" {
		return "", false
	}
	return value, true
}

// Set stores token, or removes the stored credential when token is empty.
func (s *Store) Set(token string) error {
	if token == "" {
		return s.Clear()
	}
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Set(s.key, token); err != nil {
		return fmt.Errorf("[Store.Set] repo.Set: %w", err)
	}
	return nil
}

// Clear removes the stored credential. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Delete(s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("[Store.Clear] repo.Delete: %w", err)
	}
	return nil
}

// Token implements oauth2.TokenSource over the stored credential.
func (s *Store) Token() (*oauth2.Token, error) {
	raw, ok := s.Get()
	if !ok {
		return nil, ErrNoCredential
	}
	return &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)
