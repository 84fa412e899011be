// Package config centralizes how Insightmate reads environment variables and
// exposes them as typed values.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config represents runtime configuration for the service.
type Config struct {
	Address      string
	OpenAIKey    string
	Model        string
	MaxFileSize  int64
	UploadDir    string
	DataDir      string
	UserDataFile string
}

const (
	defaultAddress     = "localhost:8009"
	defaultMaxFileSize = 10 << 20 // 10 MiB
	defaultModel       = "gpt-3.5-turbo"
	defaultUploadDir   = "uploads"
	defaultDataDir     = "data"
)

// Load reads configuration from environment variables falling back to defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Address:     readEnv("INSIGHTMATE_ADDRESS", defaultAddress),
		OpenAIKey:   readEnv("OPENAI_API_KEY", ""),
		Model:       readEnv("INSIGHTMATE_MODEL", defaultModel),
		MaxFileSize: parseInt64("INSIGHTMATE_MAX_FILE_BYTES", defaultMaxFileSize),
		UploadDir:   readEnv("INSIGHTMATE_UPLOAD_DIR", defaultUploadDir),
		DataDir:     readEnv("INSIGHTMATE_DATA_DIR", defaultDataDir),
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	cfg.UserDataFile = filepath.Join(cfg.DataDir, "user_data.json")
	return cfg, nil
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}
