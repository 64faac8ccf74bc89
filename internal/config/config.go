package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/git-atharvb/nexashield-app/pkg/models"
)

// Config collects every tunable the commands need. Values come from the
// environment (optionally seeded from a .env file); anything unset falls
// back to a path under the user's data directory.
type Config struct {
	DBPath            string
	QuarantineDir     string
	QuarantineLogPath string
	ScheduleFilePath  string
	WatchRoot         string
	HashChunkSize     int
	SchedulerInterval time.Duration
}

// Load reads a .env file if one is present (ignored in deployed installs
// where everything comes from the real environment) and assembles the
// configuration.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("NEXASHIELD_DATA_DIR", defaultDataDir())

	return &Config{
		DBPath:            getEnv("NEXASHIELD_DB_PATH", filepath.Join(dataDir, "signatures.db")),
		QuarantineDir:     getEnv("NEXASHIELD_QUARANTINE_DIR", filepath.Join(dataDir, "quarantine")),
		QuarantineLogPath: getEnv("NEXASHIELD_QUARANTINE_LOG", filepath.Join(dataDir, "quarantine_log.json")),
		ScheduleFilePath:  getEnv("NEXASHIELD_SCHEDULE_FILE", filepath.Join(dataDir, "schedule.json")),
		WatchRoot:         getEnv("NEXASHIELD_WATCH_ROOT", defaultWatchRoot()),
		HashChunkSize:     getEnvInt("NEXASHIELD_HASH_CHUNK_SIZE", models.DefaultHashChunkSize),
		SchedulerInterval: getEnvDuration("NEXASHIELD_SCHEDULER_INTERVAL", models.DefaultSchedulerInterval),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nexashield"
	}
	return filepath.Join(home, ".nexashield")
}

func defaultWatchRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
