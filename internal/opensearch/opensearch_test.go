package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	opensearch "github.com/opensearch-project/opensearch-go/v4"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/report"
	"github.com/Rorical/indexschema/internal/schema"
	"github.com/Rorical/indexschema/internal/translate"
)

// fakeEngine serves the handful of endpoints reconciliation needs for one index.
type fakeEngine struct {
	mu sync.Mutex

	info     string
	index    string
	exists   bool
	mapping  json.RawMessage
	settings json.RawMessage

	// mergeOnPut makes a mapping update replace the live mapping.
	mergeOnPut bool

	created  []byte
	putPath  string
	putBody  []byte
	requests []string
}

func (f *fakeEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("content-type", "application/json")

	base := "/" + f.index
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = w.Write([]byte(f.info))
	case r.Method == http.MethodHead && r.URL.Path == base:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == base:
		f.created = body
		f.exists = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.Method == http.MethodGet && r.URL.Path == base+"/_mapping":
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
			return
		}
		_, _ = w.Write([]byte(`{"` + f.index + `":{"mappings":` + string(f.mapping) + `}}`))
	case r.Method == http.MethodGet && r.URL.Path == base+"/_settings":
		settings := f.settings
		if settings == nil {
			settings = json.RawMessage(`{"index":{"number_of_shards":"1"}}`)
		}
		_, _ = w.Write([]byte(`{"` + f.index + `":{"settings":` + string(settings) + `}}`))
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, base+"/_mapping"):
		f.putPath, f.putBody = r.URL.Path, body
		if !f.mergeOnPut {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"illegal_argument_exception","reason":"mapper [sku] cannot be changed"},"status":400}`))
			return
		}
		f.mapping = body
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFake(t *testing.T, f *fakeEngine) *opensearch.Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := opensearch.NewClient(opensearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func profileFor(t *testing.T, l engine.Line) *engine.Profile {
	t.Helper()
	p, err := engine.ProfileFor(l)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	return p
}

func desiredIndex(t *testing.T, p *engine.Profile) *schema.Index {
	t.Helper()
	ix, err := translate.Translate(p, []translate.FieldDescriptor{
		{Path: "title", Kind: translate.KindText, Searchable: true, Scoring: true},
		{Path: "sku", Kind: translate.KindKeyword, Searchable: true, Sortable: true},
	}, nil)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	ix.Name = "products"
	return ix
}

type memFingerprints struct {
	seen map[string]string
}

func (m *memFingerprints) Seen(_ context.Context, index, fp string) (bool, error) {
	return m.seen[index] == fp, nil
}

func (m *memFingerprints) Remember(_ context.Context, index, fp string) error {
	if m.seen == nil {
		m.seen = map[string]string{}
	}
	m.seen[index] = fp
	return nil
}

type memSink struct {
	reports []report.Report
}

func (m *memSink) PublishReport(_ context.Context, r report.Report) error {
	m.reports = append(m.reports, r)
	return nil
}

func TestDetect(t *testing.T) {
	tests := []struct {
		info string
		line engine.Line
	}{
		{`{"version":{"number":"7.17.3","build_flavor":"default"}}`, engine.LineES7},
		{`{"version":{"number":"6.8.23"}}`, engine.LineES6},
		{`{"version":{"distribution":"opensearch","number":"2.11.0"}}`, engine.LineOpenSearch},
	}
	for _, tt := range tests {
		c := newFake(t, &fakeEngine{info: tt.info, index: "x"})
		v, err := Detect(context.Background(), c)
		if err != nil {
			t.Fatalf("detect %s: %v", tt.info, err)
		}
		if l, err := v.Line(); err != nil || l != tt.line {
			t.Fatalf("%s: line %v err %v", tt.info, l, err)
		}
	}
}

func TestParseInfo_Unsupported(t *testing.T) {
	if _, err := parseInfo([]byte(`{"version":{"number":"2.4.6"}}`)); !errors.Is(err, engine.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := parseInfo([]byte(`{}`)); err == nil {
		t.Fatalf("expected error for missing version")
	}
}

func TestReconcile_CreatesMissingIndex(t *testing.T) {
	p := profileFor(t, engine.LineOpenSearch)
	f := &fakeEngine{index: "products"}
	c := newFake(t, f)
	desired := desiredIndex(t, p)
	sink := &memSink{}

	out, err := Reconcile(context.Background(), c, desired, ReconcileOptions{Profile: p, Sink: sink})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.Action != ActionCreated {
		t.Fatalf("action: %s", out.Action)
	}
	want, _ := desired.MarshalCreateBody(codec.NewDialect(p))
	if string(f.created) != string(want) {
		t.Fatalf("create body:\ngot  %s\nwant %s", f.created, want)
	}
	if len(sink.reports) != 1 || !sink.reports[0].Valid() {
		t.Fatalf("sink: %+v", sink.reports)
	}
}

func liveFrom(t *testing.T, desired *schema.Index, p *engine.Profile) json.RawMessage {
	t.Helper()
	m, err := desired.MarshalMapping(codec.NewDialect(p))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return m
}

func TestReconcile_ValidThenCached(t *testing.T) {
	p := profileFor(t, engine.LineES7)
	desired := desiredIndex(t, p)
	f := &fakeEngine{index: "products", exists: true, mapping: liveFrom(t, desired, p)}
	c := newFake(t, f)
	fps := &memFingerprints{}
	opts := ReconcileOptions{Profile: p, Fingerprints: fps}

	out, err := Reconcile(context.Background(), c, desired, opts)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.Action != ActionValid || out.Cached {
		t.Fatalf("outcome: %+v", out)
	}
	if fps.seen["products"] == "" {
		t.Fatalf("fingerprint not remembered")
	}

	out, err = Reconcile(context.Background(), c, desired, opts)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.Action != ActionValid || !out.Cached {
		t.Fatalf("second pass must hit the cache: %+v", out)
	}
}

func TestReconcile_RejectsMismatch(t *testing.T) {
	p := profileFor(t, engine.LineES7)
	desired := desiredIndex(t, p)
	f := &fakeEngine{index: "products", exists: true, mapping: json.RawMessage(`{"properties":{"sku":{"type":"text"}}}`)}
	c := newFake(t, f)
	sink := &memSink{}

	out, err := Reconcile(context.Background(), c, desired, ReconcileOptions{Profile: p, Sink: sink})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	var me *report.MismatchError
	if !errors.As(err, &me) || len(me.Entries) != 2 {
		t.Fatalf("expected two mismatches, got %v", err)
	}
	if out.Action != ActionRejected {
		t.Fatalf("action: %s", out.Action)
	}
	if f.putPath != "" {
		t.Fatalf("validate mode must not update the mapping")
	}
	if len(sink.reports) != 1 || sink.reports[0].Valid() {
		t.Fatalf("sink: %+v", sink.reports)
	}
}

func TestReconcile_UpdateMode(t *testing.T) {
	p := profileFor(t, engine.LineOpenSearch)
	desired := desiredIndex(t, p)
	f := &fakeEngine{index: "products", exists: true, mergeOnPut: true,
		mapping: json.RawMessage(`{"properties":{"sku":{"type":"keyword"}}}`)}
	c := newFake(t, f)

	out, err := Reconcile(context.Background(), c, desired, ReconcileOptions{Profile: p, Mode: ModeUpdate})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if out.Action != ActionUpdated || !out.Report.Valid() {
		t.Fatalf("outcome: %+v", out)
	}
	if f.putPath != "/products/_mapping" {
		t.Fatalf("put path: %s", f.putPath)
	}
}

func TestReconcile_UpdateRefused(t *testing.T) {
	p := profileFor(t, engine.LineES6)
	desired := desiredIndex(t, p)
	f := &fakeEngine{index: "products", exists: true,
		mapping: json.RawMessage(`{"doc":{"properties":{"sku":{"type":"text"}}}}`)}
	c := newFake(t, f)

	out, err := Reconcile(context.Background(), c, desired, ReconcileOptions{Profile: p, Mode: ModeUpdate})
	if !errors.Is(err, ErrRejected) || out.Action != ActionRejected {
		t.Fatalf("expected rejection, got %v %+v", err, out)
	}
	if f.putPath != "/products/_mapping/doc" {
		t.Fatalf("typed lines put under the type name, got %q", f.putPath)
	}
	if strings.HasPrefix(string(f.putBody), `{"doc"`) {
		t.Fatalf("typed put body must not be wrapped: %s", f.putBody)
	}
}

func TestReconcile_CreateOnlySkipsExisting(t *testing.T) {
	p := profileFor(t, engine.LineES7)
	f := &fakeEngine{index: "products", exists: true, mapping: json.RawMessage(`{}`)}
	c := newFake(t, f)

	out, err := Reconcile(context.Background(), c, desiredIndex(t, p), ReconcileOptions{Profile: p, Mode: ModeCreateOnly})
	if err != nil || out.Action != ActionSkipped {
		t.Fatalf("expected skip, got %v %+v", err, out)
	}
	for _, r := range f.requests {
		if strings.HasSuffix(r, "/_mapping") {
			t.Fatalf("create-only must not read the mapping: %v", f.requests)
		}
	}
}

func TestFetch_NotFound(t *testing.T) {
	p := profileFor(t, engine.LineES7)
	c := newFake(t, &fakeEngine{index: "products"})
	_, found, err := Fetch(context.Background(), c, "products", p)
	if err != nil || found {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeValidate {
		t.Fatalf("default mode: %v %v", m, err)
	}
	if _, err := ParseMode("yolo"); err == nil {
		t.Fatalf("expected error")
	}
}
