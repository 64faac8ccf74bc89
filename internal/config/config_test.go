package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.DBPath == "" || cfg.QuarantineDir == "" || cfg.ScheduleFilePath == "" {
		t.Fatalf("missing defaults: %+v", cfg)
	}
	if cfg.HashChunkSize != 64*1024 {
		t.Errorf("chunk size = %d, want 64KiB", cfg.HashChunkSize)
	}
	if cfg.SchedulerInterval != time.Minute {
		t.Errorf("scheduler interval = %v, want 1m", cfg.SchedulerInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEXASHIELD_DB_PATH", "/tmp/override.db")
	t.Setenv("NEXASHIELD_HASH_CHUNK_SIZE", "4096")
	t.Setenv("NEXASHIELD_SCHEDULER_INTERVAL", "5s")

	cfg := Load()
	if cfg.DBPath != "/tmp/override.db" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.HashChunkSize != 4096 {
		t.Errorf("chunk size = %d", cfg.HashChunkSize)
	}
	if cfg.SchedulerInterval != 5*time.Second {
		t.Errorf("interval = %v", cfg.SchedulerInterval)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("NEXASHIELD_HASH_CHUNK_SIZE", "not-a-number")
	t.Setenv("NEXASHIELD_SCHEDULER_INTERVAL", "-3s")

	cfg := Load()
	if cfg.HashChunkSize != 64*1024 {
		t.Errorf("invalid chunk size not rejected: %d", cfg.HashChunkSize)
	}
	if cfg.SchedulerInterval != time.Minute {
		t.Errorf("invalid interval not rejected: %v", cfg.SchedulerInterval)
	}
}
