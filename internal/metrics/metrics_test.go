package metrics_test

import (
	"testing"

	"github.com/jrsteele09/go-affiliate-portal/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	require.Equal(t, "2xx", metrics.StatusClass(204))
	require.Equal(t, "401", metrics.StatusClass(401))
	require.Equal(t, "403", metrics.StatusClass(403))
	require.Equal(t, "4xx", metrics.StatusClass(404))
	require.Equal(t, "5xx", metrics.StatusClass(502))
	require.Equal(t, "other", metrics.StatusClass(302))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.SessionClearedTotal.WithLabelValues("logout"))
	metrics.SessionClearedTotal.WithLabelValues("logout").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(metrics.SessionClearedTotal.WithLabelValues("logout")))
}
