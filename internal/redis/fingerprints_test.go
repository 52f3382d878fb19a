package redis

import (
	"context"
	"testing"
)

func TestFingerprints_Key(t *testing.T) {
	if got := (Fingerprints{}).key("products"); got != "indexschema:clean:products" {
		t.Fatalf("default key: %q", got)
	}
	if got := (Fingerprints{Prefix: "x"}).key("products"); got != "x:products" {
		t.Fatalf("prefixed key: %q", got)
	}
}

func TestFingerprints_ValidatesInputs(t *testing.T) {
	f := Fingerprints{}
	if _, err := f.Seen(context.Background(), "", "fp"); err == nil {
		t.Fatalf("expected error")
	}
	if err := f.Remember(context.Background(), "products", ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConnect_RequiresAddr(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConfig_Options(t *testing.T) {
	o := Config{Addr: "127.0.0.1:6379", DB: 3, Password: "pw"}.options()
	if o.Addr != "127.0.0.1:6379" || o.DB != 3 || o.Password != "pw" || o.DialTimeout != pingTimeout {
		t.Fatalf("options: %+v", o)
	}
}

func TestOpen_RequiresAddr(t *testing.T) {
	if _, _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error")
	}
}
