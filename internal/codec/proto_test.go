package codec

import (
	"bytes"
	"errors"
	"testing"
)

func reportFields() map[string]any {
	return map[string]any{
		"id":    "2b0c5bb8-5f0e-4a43-9d3c-1f4f1d7c0a11",
		"index": "products",
		"valid": false,
		"entries": []any{
			map[string]any{"path": "index 'products'.mapping '_doc'.property 'title'", "message": "missing property mapping"},
		},
	}
}

func TestMarshalFields_RoundTrip(t *testing.T) {
	b, err := MarshalFields(reportFields())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := UnmarshalFields(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["index"] != "products" || out["valid"] != false {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}
	entries, ok := out["entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("entries: %+v", out["entries"])
	}
}

func TestMarshalFields_Deterministic(t *testing.T) {
	a, err := MarshalFields(reportFields())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		b, _ := MarshalFields(reportFields())
		if !bytes.Equal(a, b) {
			t.Fatalf("encoding differs between runs")
		}
	}
}

func TestMarshalFields_Unsupported(t *testing.T) {
	if _, err := MarshalFields(map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUnmarshalFields_Errors(t *testing.T) {
	if _, err := UnmarshalFields(nil); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if _, err := UnmarshalFields([]byte{0xff, 0xfe, 0xfd}); err == nil {
		t.Fatalf("expected error for bad data")
	}
}
