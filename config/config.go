package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/jsphweid/taikoshift/constants"
)

// Config holds the tunable values of the converter. Every engine bound has a
// default in constants and can be overridden from the environment or a .env
// file in the working directory.
type Config struct {
	SvMin         float64
	SvMax         float64
	TimeTolerance float64
	FloatMax      float64
	FloatMin      float64

	OutputMode string
	LazerSafe  bool

	LogLevel string
	// LogFile may name a directory; each command then logs to its own file.
	LogFile string

	ListenAddr       string
	WatchDebounceMs  int
	OutputDir        string
	MaxFilesPerBatch int
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		SvMin:         getEnvFloat("TAIKOSHIFT_SV_MIN", constants.DefaultSvMin),
		SvMax:         getEnvFloat("TAIKOSHIFT_SV_MAX", constants.DefaultSvMax),
		TimeTolerance: getEnvFloat("TAIKOSHIFT_TIME_TOLERANCE_MS", constants.TimeToleranceMs),
		FloatMax:      getEnvFloat("TAIKOSHIFT_FLOAT_MAX", constants.BeatLengthFloatMax),
		FloatMin:      getEnvFloat("TAIKOSHIFT_FLOAT_MIN", constants.BeatLengthFloatMinPositive),

		OutputMode: getEnv("TAIKOSHIFT_OUTPUT_MODE", "lazer"),
		LazerSafe:  getEnvBool("TAIKOSHIFT_LAZER_SAFE", false),

		LogLevel: getEnv("TAIKOSHIFT_LOG_LEVEL", "info"),
		LogFile:  getEnv("TAIKOSHIFT_LOG_FILE", ""),

		ListenAddr:       getEnv("TAIKOSHIFT_LISTEN_ADDR", ":8080"),
		WatchDebounceMs:  getEnvInt("TAIKOSHIFT_WATCH_DEBOUNCE_MS", 500),
		OutputDir:        getEnv("TAIKOSHIFT_OUTPUT_DIR", ""),
		MaxFilesPerBatch: getEnvInt("TAIKOSHIFT_MAX_FILES", 0),
	}
}
