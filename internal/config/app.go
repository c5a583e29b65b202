package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime settings of the CLI and HTTP server.
type App struct {
	Port            string
	OutputDir       string
	OutputRetention time.Duration
	SweepSchedule   string
	MaxUploadMB     int
	PDFBackend      string
	LogLevel        string
	ProfilePath     string
}

// LoadApp reads the application settings from the environment, loading a
// .env file from the working directory first when one exists.
func LoadApp() *App {
	_ = godotenv.Load()

	return &App{
		Port:            getEnv("PORT", "8080"),
		OutputDir:       getEnv("OUTPUT_DIR", os.TempDir()),
		OutputRetention: getEnvAsDuration("OUTPUT_RETENTION", time.Hour),
		SweepSchedule:   getEnv("SWEEP_SCHEDULE", "*/10 * * * *"),
		MaxUploadMB:     getEnvAsInt("MAX_UPLOAD_MB", 64),
		PDFBackend:      getEnv("PDF_BACKEND", "ledongthuc"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ProfilePath:     getEnv("REPORT_PROFILE", ""),
	}
}

// Level maps LogLevel onto slog levels; unknown values mean info.
func (a *App) Level() slog.Level {
	return ParseLevel(a.LogLevel)
}

// ParseLevel converts "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
