package logger

import "testing"

func TestRedactorMasksSecretsAndHashesDevices(t *testing.T) {
	r := redactor{enabled: true, salt: "s"}
	out := r.kvs([]interface{}{"api_key", "sk-123", "device_id", "dev-1", "lang", "cpp", "dangling"})

	if len(out) != 7 {
		t.Fatalf("unexpected kv length: %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api_key not redacted: %v", out[1])
	}
	hashed, _ := out[3].(string)
	if hashed == "dev-1" || len(hashed) != len("hash:")+12 {
		t.Fatalf("device_id not hashed: %v", out[3])
	}
	if out[5] != "cpp" {
		t.Fatalf("plain value changed: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("odd trailing key dropped: %v", out[6])
	}
}

func TestRedactorDisabledPassesThrough(t *testing.T) {
	r := redactor{}
	kv := []interface{}{"token", "abc"}
	out := r.kvs(kv)
	if out[1] != "abc" {
		t.Fatalf("expected passthrough, got %v", out[1])
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("service", "x").Info("hello", "k", "v")
}
