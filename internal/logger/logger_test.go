package logger_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-affiliate-portal/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.TraceLevel, logger.ParseLevel("trace"))
	require.Equal(t, zerolog.DebugLevel, logger.ParseLevel(" DEBUG "))
	require.Equal(t, zerolog.WarnLevel, logger.ParseLevel("warning"))
	require.Equal(t, zerolog.ErrorLevel, logger.ParseLevel("error"))
	require.Equal(t, zerolog.InfoLevel, logger.ParseLevel("bogus"))
}

func TestInit_WritesJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	l := logger.Init(logger.Options{Level: "info", Output: &buf})

	l.Debug().Msg("hidden")
	l.Info().Str("path", "/dashboard").Msg("visible")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"path":"/dashboard"`)
	require.Contains(t, buf.String(), `"message":"visible"`)
}
