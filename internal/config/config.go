package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	internalnats "github.com/Rorical/indexschema/internal/nats"
)

type Config struct {
	Service ServiceConfig

	OpenSearch OpenSearchConfig
	Schema     SchemaConfig

	// Redis and NATS are optional; an empty address disables them.
	Redis RedisConfig
	NATS  internalnats.ConnConfig
}

type ServiceConfig struct {
	Env      string
	LogLevel slog.Level
	HTTPAddr string
}

type OpenSearchConfig struct {
	URL      string
	Username string
	Password string
	Insecure bool

	// EngineVersion overrides detection, e.g. "7.17.3" or "opensearch:2.11.0".
	EngineVersion string
}

type SchemaConfig struct {
	// Catalogs are YAML field catalog files, one index each.
	Catalogs   []string
	UpdateMode string
}

type RedisConfig struct {
	Addr     string
	DB       int
	Password string
	TTL      time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{}

	cfg.Service.Env = getenv("INDEXSCHEMA_ENV", "dev")
	cfg.Service.HTTPAddr = getenv("INDEXSCHEMA_HTTP_ADDR", ":8080")
	if err := cfg.Service.LogLevel.UnmarshalText([]byte(getenv("INDEXSCHEMA_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("INDEXSCHEMA_LOG_LEVEL: %w", err)
	}

	cfg.OpenSearch.URL = getenv("INDEXSCHEMA_OPENSEARCH_URL", "http://127.0.0.1:9200")
	cfg.OpenSearch.Username = getenv("INDEXSCHEMA_OPENSEARCH_USERNAME", "")
	cfg.OpenSearch.Password = getenv("INDEXSCHEMA_OPENSEARCH_PASSWORD", "")
	cfg.OpenSearch.Insecure = getenvBool("INDEXSCHEMA_OPENSEARCH_INSECURE", false)
	cfg.OpenSearch.EngineVersion = getenv("INDEXSCHEMA_ENGINE_VERSION", "")

	cfg.Schema.Catalogs = splitCSV(getenv("INDEXSCHEMA_CATALOG", ""))
	cfg.Schema.UpdateMode = getenv("INDEXSCHEMA_UPDATE_MODE", "validate")
	switch cfg.Schema.UpdateMode {
	case "validate", "update", "create-only":
	default:
		return Config{}, fmt.Errorf("INDEXSCHEMA_UPDATE_MODE: unknown mode %q", cfg.Schema.UpdateMode)
	}

	cfg.Redis.Addr = getenv("INDEXSCHEMA_REDIS_ADDR", "")
	cfg.Redis.Password = getenv("INDEXSCHEMA_REDIS_PASSWORD", "")
	cfg.Redis.DB = getenvInt("INDEXSCHEMA_REDIS_DB", 0)
	cfg.Redis.TTL = getenvDuration("INDEXSCHEMA_REDIS_TTL", 24*time.Hour)

	cfg.NATS = internalnats.DefaultConnConfig()
	cfg.NATS.URL = getenv("INDEXSCHEMA_NATS_URL", "")
	cfg.NATS.Name = getenv("INDEXSCHEMA_NATS_NAME", cfg.NATS.Name)
	if d := getenv("INDEXSCHEMA_NATS_TIMEOUT", ""); d != "" {
		dur, err := time.ParseDuration(d)
		if err != nil {
			return Config{}, fmt.Errorf("INDEXSCHEMA_NATS_TIMEOUT: %w", err)
		}
		cfg.NATS.Timeout = dur
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBool(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
