package config_test

import (
	"testing"

	"github.com/m5trevino/trevino-war-room/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"WARROOM_PORT", "DB_PATH", "INGEST_INTERVAL_HOURS", "REDIS_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.DBPath != "jobs.db" {
		t.Errorf("DBPath = %q, want jobs.db", cfg.DBPath)
	}
	if cfg.IngestIntervalHours != 6 {
		t.Errorf("IngestIntervalHours = %d, want 6", cfg.IngestIntervalHours)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty (events disabled)", cfg.RedisURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WARROOM_PORT", "8080")
	t.Setenv("INGEST_INTERVAL_HOURS", "12")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.IngestIntervalHours != 12 {
		t.Errorf("IngestIntervalHours = %d, want 12", cfg.IngestIntervalHours)
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	for _, bad := range []string{"zero", "0", "-3"} {
		t.Setenv("INGEST_INTERVAL_HOURS", bad)
		if _, err := config.Load(); err == nil {
			t.Errorf("Load with INGEST_INTERVAL_HOURS=%q expected error, got nil", bad)
		}
	}
}
