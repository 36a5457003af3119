package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by Load when no files are named. A missing file is
// not an error.
const DefaultEnvFile = ".env"

type Config struct {
	DBPath         string
	LogLevel       string
	LogFormat      string
	LogFile        string
	ImportIDPolicy string
}

// Load builds the configuration from environment variables, falling back to
// values from the given dotenv files and then to defaults. Process
// environment always wins over file values.
func Load(envFiles ...string) (*Config, error) {
	optional := len(envFiles) == 0
	if optional {
		envFiles = []string{DefaultEnvFile}
	}

	fileVals, err := godotenv.Read(envFiles...)
	if err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		fileVals = map[string]string{}
	}

	get := func(key, defaultVal string) string {
		if val, exists := os.LookupEnv(key); exists {
			return val
		}
		if val, exists := fileVals[key]; exists {
			return val
		}
		return defaultVal
	}

	cfg := &Config{
		DBPath:         get("DB_PATH", "app_data/inventory.sqlite3"),
		LogLevel:       strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(get("LOG_FORMAT", "json")),
		LogFile:        get("LOG_FILE", ""),
		ImportIDPolicy: strings.ToLower(get("IMPORT_ID_POLICY", "reassign")),
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH must not be empty")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}
	return cfg, nil
}
