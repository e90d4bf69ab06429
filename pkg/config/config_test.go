package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := "SERVER_ADDRESS=:9999\n" +
		"POSTGRES_CONN=postgres://test@localhost:5432/test\n" +
		"RABBITMQ_URL=amqp://test@localhost:5672/\n" +
		"MIGRATION_URL=file://migrations\n" +
		"QUOTA_MAX=5\n"
	if err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerAddress != ":9999" {
		t.Errorf("server address = %q, want :9999", cfg.ServerAddress)
	}
	if cfg.QuotaMax != 5 {
		t.Errorf("quota max = %d, want 5", cfg.QuotaMax)
	}
	// Unset keys fall back to defaults.
	if cfg.QuotaWarnThreshold != 8 {
		t.Errorf("warn threshold = %d, want default 8", cfg.QuotaWarnThreshold)
	}
	if cfg.OutboxPollInterval != time.Second {
		t.Errorf("poll interval = %s, want default 1s", cfg.OutboxPollInterval)
	}
	if cfg.OutboxBatchSize != 100 {
		t.Errorf("batch size = %d, want default 100", cfg.OutboxBatchSize)
	}
}
