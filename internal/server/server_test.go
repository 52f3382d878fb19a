package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rorical/indexschema/internal/opensearch"
	"github.com/Rorical/indexschema/internal/report"
	"github.com/Rorical/indexschema/internal/translate"
)

type fakeChecker struct {
	checkFn func(ctx context.Context, c *translate.Catalog) (opensearch.Outcome, error)
}

func (f *fakeChecker) Check(ctx context.Context, c *translate.Catalog) (opensearch.Outcome, error) {
	return f.checkFn(ctx, c)
}

type fakeCatalogs map[string]*translate.Catalog

func (f fakeCatalogs) Get(index string) (*translate.Catalog, bool) {
	c, ok := f[index]
	return c, ok
}

func serve(t *testing.T, api *API, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, r)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("content-type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v (%s)", err, w.Body.String())
		}
	}
	return w, out
}

func TestHealthz(t *testing.T) {
	w, _ := serve(t, &API{}, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", w.Code, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	w, _ := serve(t, &API{}, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "indexschema_") {
		t.Fatalf("expected indexschema metrics in exposition")
	}
}

func TestTranslate_OK(t *testing.T) {
	body := `{"engine":"7.17.3","catalog":{"index":"products","fields":[{"path":"sku","kind":"keyword","searchable":true,"sortable":true}]}}`
	w, out := serve(t, &API{}, http.MethodPost, "/v1/translate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if out["index"] != "products" || out["line"] != "elasticsearch-7" {
		t.Fatalf("body: %+v", out)
	}
	got, _ := json.Marshal(out["body"])
	if string(got) != `{"mappings":{"properties":{"sku":{"type":"keyword"}}}}` {
		t.Fatalf("create body: %s", got)
	}
}

func TestTranslate_LargeNullValue(t *testing.T) {
	body := `{"engine":"7.17.3","catalog":{"index":"products","fields":[{"path":"stock","kind":"long","null_value":9007199254740993}]}}`
	w, _ := serve(t, &API{}, http.MethodPost, "/v1/translate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"null_value":9007199254740993`) {
		t.Fatalf("null_value lost precision: %s", w.Body.String())
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{"bad json", `{"engine":`, ""},
		{"unknown member", `{"engine":"7.17.3","catalog":{"index":"p"},"x":1}`, ""},
		{"missing index", `{"engine":"7.17.3","catalog":{"fields":[]}}`, ""},
		{"unsupported engine", `{"engine":"2.4.6","catalog":{"index":"p"}}`, ""},
		{"translation", `{"engine":"6.8.0","catalog":{"index":"p","fields":[{"path":"title","kind":"text","sortable":true}]}}`, "title"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, out := serve(t, &API{}, http.MethodPost, "/v1/translate", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d: %s", w.Code, w.Body.String())
			}
			if tc.path != "" && out["path"] != tc.path {
				t.Fatalf("path: %+v", out)
			}
		})
	}
}

func TestTranslate_MethodNotAllowed(t *testing.T) {
	w, _ := serve(t, &API{}, http.MethodGet, "/v1/translate", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", w.Code)
	}
}

func TestValidate(t *testing.T) {
	body := `{"engine":"7.17.3","index":"products",
		"expected":{"mappings":{"properties":{"sku":{"type":"keyword"}}}},
		"actual":{"mappings":{"properties":{"sku":{"type":"text"},"extra":{"type":"long"}}}}}`
	w, out := serve(t, &API{}, http.MethodPost, "/v1/validate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if out["valid"] != false {
		t.Fatalf("expected invalid: %+v", out)
	}
	entries, _ := out["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("entries: %+v", entries)
	}
	e := entries[0].(map[string]any)
	if e["path"] != "index 'products'.mapping '_doc'.property 'sku'" {
		t.Fatalf("path: %v", e["path"])
	}
	if e["message"] != "invalid type: expected 'keyword', actual 'text'" {
		t.Fatalf("message: %v", e["message"])
	}
}

func TestValidate_MalformedExpected(t *testing.T) {
	body := `{"engine":"opensearch:2.11.0","index":"p",
		"expected":{"mappings":{"properties":{"x":{"type":"not_a_type"}}}},
		"actual":{"mappings":{"properties":{"x":{"type":"keyword"}}}}}`
	w, _ := serve(t, &API{}, http.MethodPost, "/v1/validate", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestCheck(t *testing.T) {
	cats := fakeCatalogs{"products": {Index: "products"}}
	rejected := (&report.Collector{})
	rejected.Add(report.Root.Index("products"), "missing property mapping")

	tests := []struct {
		name   string
		path   string
		out    opensearch.Outcome
		err    error
		status int
	}{
		{"valid", "/v1/indexes/products/check", opensearch.Outcome{Index: "products", Action: opensearch.ActionValid}, nil, http.StatusOK},
		{"rejected", "/v1/indexes/products/check", opensearch.Outcome{Index: "products", Action: opensearch.ActionRejected, Report: rejected.Report("products")},
			errors.Join(opensearch.ErrRejected, errors.New("mismatch")), http.StatusConflict},
		{"translation", "/v1/indexes/products/check", opensearch.Outcome{}, &translate.TranslationError{Path: "x", Reason: "bad"}, http.StatusInternalServerError},
		{"engine down", "/v1/indexes/products/check", opensearch.Outcome{}, errors.New("dial tcp: refused"), http.StatusBadGateway},
		{"unknown index", "/v1/indexes/orders/check", opensearch.Outcome{}, nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &API{Catalogs: cats, Checker: &fakeChecker{checkFn: func(ctx context.Context, c *translate.Catalog) (opensearch.Outcome, error) {
				return tc.out, tc.err
			}}}
			w, out := serve(t, api, http.MethodGet, tc.path, "")
			if w.Code != tc.status {
				t.Fatalf("status %d: %s", w.Code, w.Body.String())
			}
			if tc.status == http.StatusConflict {
				rep := out["report"].(map[string]any)
				if rep["valid"] != false || len(rep["entries"].([]any)) != 1 {
					t.Fatalf("report: %+v", rep)
				}
			}
		})
	}
}

func TestCheck_NotConfigured(t *testing.T) {
	w, _ := serve(t, &API{}, http.MethodGet, "/v1/indexes/products/check", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
}
