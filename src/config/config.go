package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvFileEnvVar names an alternative .env file when none sits next to the executable.
	EnvFileEnvVar        = "AUTO_COPY_ENV"
	DefaultLogLevel      = "info"
	DefaultMinDragPixels = 3
	DefaultControlPort   = 49560
)

type LoadOptions struct {
	EnvFileOverride string
}

type Config struct {
	EnvFile           string
	EnableFileLogging bool
	LogLevel          string
	EnableTray        bool
	MinDragPixels     int
	ControlPort       int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Configuration sources in priority order:
	// 1) explicit override (--env-file)
	// 2) .env in the application (executable) directory
	// 3) AUTO_COPY_ENV env var as a path to a config file
	// Values already present in the environment are never overwritten.
	envPath := resolveEnvPath(opts)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	minDrag := DefaultMinDragPixels
	if v := os.Getenv("MIN_DRAG_PIXELS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			minDrag = n
		}
	}

	controlPort := DefaultControlPort
	if v := os.Getenv("AUTO_COPY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1024 && n <= 65535 {
			controlPort = n
		}
	}

	cfg := &Config{
		EnvFile:           envPath,
		EnableFileLogging: parseBool(os.Getenv("ENABLE_FILE_LOGGING"), false),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", DefaultLogLevel),
		EnableTray:        parseBool(os.Getenv("ENABLE_TRAY"), true),
		MinDragPixels:     minDrag,
		ControlPort:       controlPort,
	}

	return cfg, nil
}

func resolveEnvPath(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.EnvFileOverride); override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func parseBool(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
