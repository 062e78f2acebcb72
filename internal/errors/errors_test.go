package errors_test

import (
	"fmt"
	"testing"

	perrors "github.com/jrsteele09/go-affiliate-portal/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	require.NoError(t, perrors.Wrapf(nil, "ignored %d", 1))

	err := perrors.Wrapf(perrors.ErrNetwork, "[Client.%s] GET %s", "Request", "/users/me")
	require.EqualError(t, err, "[Client.Request] GET /users/me: network error")
	require.True(t, perrors.Is(err, perrors.ErrNetwork))
}

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestAs(t *testing.T) {
	err := perrors.Wrapf(&statusErr{code: 401}, "outer")
	var target *statusErr
	require.True(t, perrors.As(err, &target))
	require.Equal(t, 401, target.code)
}
