// Package sessions holds the client-side session: the bearer credential and
// the cached profile of the user it belongs to.
//
// The credential and the cached identity must never disagree, so the only way
// to change the credential is ReplaceCredential, which empties the cache before
// and after the storage write. Every change also bumps a generation counter; a
// profile fetch that started under an older generation is not allowed to
// populate the cache when it completes.
//
// Storage calls are made without holding the cache lock, so a slow token repo
// only delays the caller that is waiting on it.
package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// DefaultUserCacheTTL is how long a fetched profile is trusted.
const DefaultUserCacheTTL = 5 * time.Minute

// CachedUser is a profile together with the time it was fetched.
type CachedUser struct {
	Profile   *users.Profile
	FetchedAt time.Time
}

// Session couples a token.Store with the user cache. Safe for concurrent use.
type Session struct {
	writeMu    sync.Mutex // serialises credential writes
	mu         sync.Mutex // guards cached, generation and writing
	store      *token.Store
	cached     *CachedUser
	generation uint64
	writing    bool
	ttl        time.Duration
	nowTime    func() time.Time // nowTime function (injectable for testing)
	logger     zerolog.Logger
}

// Option defines a function type to modify the Session instance.
type Option func(*Session)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Session) {
		s.nowTime = nowFunc
	}
}

// WithUserCacheTTL overrides DefaultUserCacheTTL.
func WithUserCacheTTL(ttl time.Duration) Option {
	return func(s *Session) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a Session over store. A nil store is replaced by one without storage.
func New(store *token.Store, options ...Option) *Session {
	if store == nil {
		store = token.NewStore(nil)
	}
	s := &Session{
		store:   store,
		ttl:     DefaultUserCacheTTL,
		nowTime: time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.nowTime()
}

// TTL returns the user cache time-to-live.
func (s *Session) TTL() time.Duration {
	return s.ttl
}

// Credential returns the current bearer credential.
func (s *Session) Credential() (string, bool) {
	return s.store.Get()
}

// Token implements oauth2.TokenSource over the session credential.
func (s *Session) Token() (*oauth2.Token, error) {
	return s.store.Token()
}

// HasCredential reports whether a credential is present.
func (s *Session) HasCredential() bool {
	_, ok := s.Credential()
	return ok
}

// ReplaceCredential stores tok, or clears the credential when tok is empty.
// The user cache is always empty afterwards, even when the storage write fails.
func (s *Session) ReplaceCredential(tok string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.invalidateLocked()
	s.writing = true
	s.mu.Unlock()

	err := s.store.Set(tok)

	s.mu.Lock()
	s.invalidateLocked()
	s.writing = false
	generation := s.generation
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("[Session.ReplaceCredential] %w", err)
	}
	s.logger.Debug().Bool("present", tok != "").Uint64("generation", generation).Msg("credential replaced")
	return nil
}

// Clear removes the credential and the cached user.
func (s *Session) Clear() error {
	return s.ReplaceCredential("")
}

// InvalidateUser discards the cached profile. In-flight fetches will not repopulate it.
func (s *Session) InvalidateUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

func (s *Session) invalidateLocked() {
	s.cached = nil
	s.generation++
}

// Generation identifies the current credential epoch. Capture it before a
// profile fetch and pass it to StoreUser afterwards.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// CachedUser returns the cached profile while it is fresh and a credential is
// present. It misses while a credential write is in progress.
func (s *Session) CachedUser() (*users.Profile, bool) {
	s.mu.Lock()
	if s.writing || s.cached == nil || s.cached.Profile == nil {
		s.mu.Unlock()
		return nil, false
	}
	cached, generation := *s.cached, s.generation
	s.mu.Unlock()

	_, present := s.store.Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return nil, false
	}
	if !present {
		s.invalidateLocked()
		return nil, false
	}
	if s.nowTime().Sub(cached.FetchedAt) >= s.ttl {
		return nil, false
	}
	return cached.Profile, true
}

// StoreUser caches profile if the session is still in the given generation and
// still holds a credential. It reports whether the profile was cached.
func (s *Session) StoreUser(profile *users.Profile, fetchedAt time.Time, generation uint64) bool {
	if profile == nil || !s.inGeneration(generation) {
		return false
	}
	if _, ok := s.store.Get(); !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writing || generation != s.generation {
		return false
	}
	s.cached = &CachedUser{Profile: profile, FetchedAt: fetchedAt}
	return true
}

func (s *Session) inGeneration(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.writing && generation == s.generation
}
