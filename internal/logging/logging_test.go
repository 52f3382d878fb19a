package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNew_AttachesServiceAndEnv(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Service: "indexschema", Env: "test", Output: &buf})
	l.Debug("hidden")
	l.Info("index created", "index", "products")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected exactly one json record: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "index created" || rec["service"] != "indexschema" || rec["env"] != "test" || rec["index"] != "products" {
		t.Fatalf("record: %+v", rec)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger")
	}
	l := New(Config{Output: &bytes.Buffer{}})
	ctx := WithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("expected stored logger")
	}
}

func TestInitOTel_Disabled(t *testing.T) {
	t.Setenv("INDEXSCHEMA_OTEL_DISABLED", "1")
	shutdown, err := InitOTel(context.Background(), OTelConfig{})
	if err != nil {
		t.Fatalf("InitOTel: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
