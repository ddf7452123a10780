package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thereayou/planora/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Assistant.Timeout != 2*time.Minute {
		t.Fatalf("assistant timeout = %v, want 2m", cfg.Assistant.Timeout)
	}
	if cfg.Database.UseInMemory {
		t.Fatal("in-memory storage must be off by default")
	}
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("USE_IN_MEMORY_DB", "true")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("api key = %q", cfg.OpenAI.APIKey)
	}
	if !cfg.Database.UseInMemory {
		t.Fatal("expected in-memory storage")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `server:
  port: "3000"
openai:
  model: gpt-4o
assistant:
  timeout: 90s
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Fatalf("port = %q, want 3000", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("model = %q, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.Assistant.Timeout != 90*time.Second {
		t.Fatalf("timeout = %v, want 90s", cfg.Assistant.Timeout)
	}
	// Незаданные ключи берут значения по умолчанию
	if cfg.Assistant.GuardTTL != 3*time.Minute {
		t.Fatalf("guard ttl = %v, want 3m", cfg.Assistant.GuardTTL)
	}
}
