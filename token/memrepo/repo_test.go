package memrepo_test

import (
	"testing"

	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/jrsteele09/go-affiliate-portal/token/memrepo"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	r := memrepo.New()

	_, err := r.Get("k")
	require.ErrorIs(t, err, token.ErrNotFound)

	require.NoError(t, r.Set("k", "v"))
	v, err := r.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	require.NoError(t, r.Delete("k"))
	require.ErrorIs(t, r.Delete("k"), token.ErrNotFound)
}
