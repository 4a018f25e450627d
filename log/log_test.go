package log

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	lvl, err := GetLevel("debug")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)

	lvl, err = GetLevel("WARNING")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, lvl)

	_, err = GetLevel("loud")
	require.ErrorIs(t, err, ErrUnknownLogLevel)
}

func TestGetFormat(t *testing.T) {
	f, err := GetFormat("json")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)

	f, err = GetFormat("logfmt")
	require.NoError(t, err)
	require.Equal(t, FormatText, f)

	_, err = GetFormat("xml")
	require.ErrorIs(t, err, ErrUnknownLogFormat)
}

func TestConfigFlagsAndHandler(t *testing.T) {
	cfg := NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--log-level", "debug", "--log-format", "json"}))

	var sb strings.Builder
	h, err := cfg.NewHandler(&sb)
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Debug("hello", "k", "v")
	require.Contains(t, sb.String(), `"msg":"hello"`)
	require.Contains(t, sb.String(), `"k":"v"`)
}

func TestNewHandlerBadConfig(t *testing.T) {
	cfg := &Config{Level: "nope", Format: "text"}
	_, err := cfg.NewHandler(&strings.Builder{})
	require.ErrorIs(t, err, ErrUnknownLogLevel)
}
