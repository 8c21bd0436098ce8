package common

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFlagValidator tests error collection
func TestFlagValidator(t *testing.T) {
	v := NewFlagValidator().
		ValidateInt("simulations", 10, 1, 100).
		ValidateFloat("amount", 350, 0, 1000).
		ValidateChoice("source", "CSV", []string{"synthetic", "csv"})
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.GetError())

	v.ValidateInt("simulations", 0, 1, 100)
	assert.EqualError(t, v.GetError(), "validation error: simulations must be between 1 and 100, got: 0")

	v.ValidateFile("data-file", filepath.Join(t.TempDir(), "missing.csv"), false)
	assert.Contains(t, v.GetError().Error(), "validation errors:")
}

// TestLogger_Levels tests silent mode, emoji toggle and debug level
func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.Out = &buf
	logger.ShowEmojis = false

	logger.Info("hello %d", 1)
	logger.Debug("hidden")
	assert.Equal(t, "[INFO]  hello 1\n", buf.String())

	buf.Reset()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := RegisterCommonFlags(fs)
	require.NoError(t, fs.Parse([]string{"-silent", "-verbose"}))
	SetupLogger(logger, flags)

	logger.Info("quiet")
	logger.Error("boom")
	assert.Equal(t, "[ERROR] boom\n", buf.String())
}

// TestEnvLoader_LoadEnvFile tests loading variables with godotenv
func TestEnvLoader_LoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DCA_TEST_LOADER=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("DCA_TEST_LOADER") })

	logger := NewLogger()
	logger.Out = io.Discard
	loader := NewEnvLoader(logger)

	require.NoError(t, loader.LoadEnvFile(path))
	assert.Equal(t, "from-file", loader.GetEnvWithDefault("DCA_TEST_LOADER", "default"))
	assert.Equal(t, "default", loader.GetEnvWithDefault("DCA_TEST_UNSET", "default"))

	assert.NoError(t, loader.LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}

// TestResolvePath tests config path resolution
func TestResolvePath(t *testing.T) {
	assert.Equal(t, "", ResolvePath("", "configs", ".yaml"))
	assert.Equal(t, filepath.Join("configs", "btc.yaml"), ResolvePath("btc", "configs", ".yaml"))
	assert.Equal(t, "dir/run.json", ResolvePath("dir/run.json", "configs", ".yaml"))
}

// TestFormatDuration tests duration formatting
func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", FormatDuration(2*time.Minute))
	assert.Equal(t, "1.5h", FormatDuration(90*time.Minute))
}
