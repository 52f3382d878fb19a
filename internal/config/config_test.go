package config

import (
	"log/slog"
	"testing"
	"time"
)

var allKeys = []string{
	"INDEXSCHEMA_ENV",
	"INDEXSCHEMA_LOG_LEVEL",
	"INDEXSCHEMA_HTTP_ADDR",
	"INDEXSCHEMA_OPENSEARCH_URL",
	"INDEXSCHEMA_OPENSEARCH_USERNAME",
	"INDEXSCHEMA_OPENSEARCH_PASSWORD",
	"INDEXSCHEMA_OPENSEARCH_INSECURE",
	"INDEXSCHEMA_ENGINE_VERSION",
	"INDEXSCHEMA_CATALOG",
	"INDEXSCHEMA_UPDATE_MODE",
	"INDEXSCHEMA_REDIS_ADDR",
	"INDEXSCHEMA_REDIS_DB",
	"INDEXSCHEMA_REDIS_PASSWORD",
	"INDEXSCHEMA_REDIS_TTL",
	"INDEXSCHEMA_NATS_URL",
	"INDEXSCHEMA_NATS_NAME",
	"INDEXSCHEMA_NATS_TIMEOUT",
}

// clearEnv blanks every variable for the duration of the test; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Service.Env != "dev" || cfg.Service.LogLevel != slog.LevelInfo {
		t.Fatalf("service: %+v", cfg.Service)
	}
	if cfg.OpenSearch.URL == "" {
		t.Fatalf("expected opensearch url")
	}
	if cfg.Schema.UpdateMode != "validate" {
		t.Fatalf("mode: %q", cfg.Schema.UpdateMode)
	}
	if cfg.Redis.Addr != "" || cfg.NATS.URL != "" {
		t.Fatalf("redis and nats must be disabled by default")
	}
	if cfg.NATS.Name == "" || cfg.NATS.Timeout <= 0 {
		t.Fatalf("nats defaults: %+v", cfg.NATS)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INDEXSCHEMA_ENV", "test")
	t.Setenv("INDEXSCHEMA_LOG_LEVEL", "debug")
	t.Setenv("INDEXSCHEMA_OPENSEARCH_INSECURE", "true")
	t.Setenv("INDEXSCHEMA_ENGINE_VERSION", "opensearch:2.11.0")
	t.Setenv("INDEXSCHEMA_CATALOG", "a.yaml, b.yaml")
	t.Setenv("INDEXSCHEMA_UPDATE_MODE", "update")
	t.Setenv("INDEXSCHEMA_REDIS_ADDR", "127.0.0.1:9999")
	t.Setenv("INDEXSCHEMA_REDIS_DB", "2")
	t.Setenv("INDEXSCHEMA_REDIS_TTL", "2h")
	t.Setenv("INDEXSCHEMA_NATS_TIMEOUT", "3s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Service.Env != "test" || cfg.Service.LogLevel != slog.LevelDebug {
		t.Fatalf("service: %+v", cfg.Service)
	}
	if !cfg.OpenSearch.Insecure || cfg.OpenSearch.EngineVersion != "opensearch:2.11.0" {
		t.Fatalf("opensearch: %+v", cfg.OpenSearch)
	}
	if got := cfg.Schema.Catalogs; len(got) != 2 || got[0] != "a.yaml" || got[1] != "b.yaml" {
		t.Fatalf("catalogs: %+v", got)
	}
	if cfg.Schema.UpdateMode != "update" {
		t.Fatalf("mode: %q", cfg.Schema.UpdateMode)
	}
	if cfg.Redis.Addr != "127.0.0.1:9999" || cfg.Redis.DB != 2 || cfg.Redis.TTL != 2*time.Hour {
		t.Fatalf("redis: %+v", cfg.Redis)
	}
	if cfg.NATS.Timeout != 3*time.Second {
		t.Fatalf("nats timeout: %v", cfg.NATS.Timeout)
	}
}

func TestLoadFromEnv_Errors(t *testing.T) {
	tests := map[string]string{
		"INDEXSCHEMA_NATS_TIMEOUT": "notaduration",
		"INDEXSCHEMA_LOG_LEVEL":    "loud",
		"INDEXSCHEMA_UPDATE_MODE":  "yolo",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
