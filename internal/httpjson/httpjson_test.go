package httpjson

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWrite_JSON(t *testing.T) {
	rr := httptest.NewRecorder()
	Write(rr, 201, map[string]any{"ok": true})

	if rr.Code != 201 {
		t.Fatalf("status: %d", rr.Code)
	}
	if ct := rr.Header().Get("content-type"); ct == "" {
		t.Fatalf("expected content-type")
	}
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out["ok"] != true {
		t.Fatalf("body: %+v", out)
	}
}

func TestErrorWith_Path(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorWith(rr, 400, "bad", map[string]any{"path": "title", "error": "shadowed"})
	if rr.Code != 400 {
		t.Fatalf("status: %d", rr.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out["error"] != "bad" || out["path"] != "title" {
		t.Fatalf("body: %+v", out)
	}
}

func TestDecode(t *testing.T) {
	type req struct {
		Engine string `json:"engine"`
	}
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"engine":"7.17.3"}`, true},
		{"unknown member", `{"engine":"7.17.3","x":1}`, false},
		{"empty", ``, false},
		{"trailing", `{"engine":"7"} {}`, false},
		{"syntax", `{"engine":`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			var v req
			err := Decode(httptest.NewRecorder(), r, &v)
			if tc.ok {
				if err != nil || v.Engine != "7.17.3" {
					t.Fatalf("decode: %v %+v", err, v)
				}
				return
			}
			if !errors.Is(err, ErrBadBody) {
				t.Fatalf("expected ErrBadBody, got %v", err)
			}
		})
	}
}
