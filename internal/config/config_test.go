package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("STOREMON_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/stores")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SCORING_WORKERS", "8")
	t.Setenv("STOREMON_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/stores" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.ScoringWorkers != 8 {
		t.Fatalf("workers = %d", cfg.ScoringWorkers)
	}
}

func TestLoadYAMLOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_url: postgres://yaml/stores\nscoring_workers: 2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://env/stores")
	t.Setenv("STOREMON_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://yaml/stores" {
		t.Fatalf("database url = %q, want yaml value", cfg.DatabaseURL)
	}
	if cfg.ScoringWorkers != 2 {
		t.Fatalf("workers = %d, want 2", cfg.ScoringWorkers)
	}
}
