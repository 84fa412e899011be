package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8009", cfg.Address)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, filepath.Join("data", "user_data.json"), cfg.UserDataFile)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("INSIGHTMATE_ADDRESS", "0.0.0.0:9000")
	t.Setenv("INSIGHTMATE_MAX_FILE_BYTES", "2048")
	t.Setenv("INSIGHTMATE_DATA_DIR", "/var/lib/insightmate")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Address)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
	assert.Equal(t, filepath.Join("/var/lib/insightmate", "user_data.json"), cfg.UserDataFile)
}

func TestLoadIgnoresInvalidSize(t *testing.T) {
	t.Setenv("INSIGHTMATE_MAX_FILE_BYTES", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
}
