package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const catalogYAML = `index: products
dynamic: strict
fields:
  - path: sku
    kind: keyword
    searchable: true
    sortable: true
  - path: title
    kind: text
    analyzer: folding
    searchable: true
    scoring: true
analysis:
  analyzer:
    folding:
      type: custom
      tokenizer: standard
      filter: [lowercase, asciifolding]
`

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"INDEXSCHEMA_ENGINE_VERSION", "INDEXSCHEMA_CATALOG", "INDEXSCHEMA_UPDATE_MODE",
		"INDEXSCHEMA_REDIS_ADDR", "INDEXSCHEMA_NATS_URL", "INDEXSCHEMA_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("INDEXSCHEMA_OTEL_DISABLED", "1")
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "indexschema dev\n" {
		t.Fatalf("out: %q", out)
	}
}

func TestTranslateCmd(t *testing.T) {
	isolateEnv(t)
	cat := writeTemp(t, "products.yaml", catalogYAML)

	out, err := run(t, "translate", "--engine", "6.8.0", "--catalog", cat, "--mapping-only")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	want := `{"doc":{"dynamic":"strict","properties":{"sku":{"type":"keyword"},"title":{"type":"text","analyzer":"folding"}}}}` + "\n"
	if out != want {
		t.Fatalf("got  %s\nwant %s", out, want)
	}
}

func TestTranslateCmd_RequiresEngine(t *testing.T) {
	isolateEnv(t)
	cat := writeTemp(t, "products.yaml", catalogYAML)
	if _, err := run(t, "translate", "--catalog", cat); err == nil {
		t.Fatalf("expected error without --engine")
	}
}

func TestValidateCmd(t *testing.T) {
	isolateEnv(t)
	expected := writeTemp(t, "expected.json", `{"mappings":{"properties":{"sku":{"type":"keyword"}}}}`)
	same := writeTemp(t, "same.json", `{"mappings":{"properties":{"sku":{"type":"keyword","index":true},"extra":{"type":"long"}}}}`)
	other := writeTemp(t, "other.json", `{"mappings":{"properties":{"sku":{"type":"text"}}}}`)

	out, err := run(t, "validate", "--engine", "opensearch:2.11.0", "--index", "products", "--expected", expected, "--actual", same)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "matches") {
		t.Fatalf("out: %q", out)
	}

	out, err = run(t, "validate", "--engine", "opensearch:2.11.0", "--index", "products", "--expected", expected, "--actual", other)
	if !errors.Is(err, errMismatch) {
		t.Fatalf("expected errMismatch, got %v", err)
	}
	if !strings.Contains(out, "invalid type: expected 'keyword', actual 'text'") {
		t.Fatalf("out: %q", out)
	}
}

// createOnlyEngine answers as an empty OpenSearch 2 cluster that accepts index creation.
type createOnlyEngine struct {
	mu      sync.Mutex
	created map[string]string
}

func (e *createOnlyEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("content-type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"distribution":"opensearch","number":"2.11.0"}}`))
	case r.Method == http.MethodHead:
		if _, ok := e.created[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut:
		e.created[r.URL.Path] = string(body)
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestCheckCmd_CreatesMissingIndex(t *testing.T) {
	isolateEnv(t)
	eng := &createOnlyEngine{created: map[string]string{}}
	srv := httptest.NewServer(eng)
	defer srv.Close()
	t.Setenv("INDEXSCHEMA_OPENSEARCH_URL", srv.URL)

	cat := writeTemp(t, "products.yaml", catalogYAML)
	out, err := run(t, "check", "--catalog", cat)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if out != "products: created\n" {
		t.Fatalf("out: %q", out)
	}
	body := eng.created["/products"]
	if !strings.Contains(body, `"analysis":{"analyzer":{"folding"`) || !strings.Contains(body, `"dynamic":"strict"`) {
		t.Fatalf("create body: %s", body)
	}
}

func TestCheckCmd_UnknownIndex(t *testing.T) {
	isolateEnv(t)
	cat := writeTemp(t, "products.yaml", catalogYAML)
	if _, err := run(t, "check", "--catalog", cat, "orders"); err == nil {
		t.Fatalf("expected error for index without catalog")
	}
}
