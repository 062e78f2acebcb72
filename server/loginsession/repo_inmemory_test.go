package loginsession_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/server/loginsession"
	"github.com/jrsteele09/go-affiliate-portal/sessions"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoginSessionRepo(t *testing.T) {
	repo := loginsession.NewInMemoryLoginSessionRepo()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	_, err := repo.Get("missing")
	require.ErrorIs(t, err, loginsession.ErrNotFound)
	require.Error(t, repo.Upsert("", &loginsession.Entry{Session: sessions.New(nil)}))
	require.Error(t, repo.Upsert("a", &loginsession.Entry{}))

	require.NoError(t, repo.Upsert("old", &loginsession.Entry{Session: sessions.New(nil), CreatedAt: now, LastSeen: now}))
	require.NoError(t, repo.Upsert("new", &loginsession.Entry{Session: sessions.New(nil), CreatedAt: now, LastSeen: now.Add(time.Hour)}))

	entry, err := repo.Get("new")
	require.NoError(t, err)
	require.NotNil(t, entry.Session)

	require.Equal(t, 1, repo.Purge(now.Add(time.Minute)))
	_, err = repo.Get("old")
	require.ErrorIs(t, err, loginsession.ErrNotFound)

	require.NoError(t, repo.Delete("new"))
	require.NoError(t, repo.Delete("new"))
	_, err = repo.Get("new")
	require.ErrorIs(t, err, loginsession.ErrNotFound)
}
