package loginsession

import (
	"errors"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/sessions"
)

var ErrNotFound = errors.New("login session not found")

// Entry is one browser session. The credential itself lives in the
// token.Repo behind Session; Entry only tracks lifetime.
type Entry struct {
	Session   *sessions.Session
	CreatedAt time.Time
	LastSeen  time.Time
}

type Repo interface {
	Upsert(sessionID string, entry *Entry) error
	Get(sessionID string) (*Entry, error)
	Delete(sessionID string) error
	// Purge removes entries not seen since before and returns how many went.
	Purge(before time.Time) int
}
