package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CanonicalizeJSON marshals a JSON value with stable key ordering and no whitespace.
// Input may be raw bytes, a map/struct, or any json-marshalable value.
func CanonicalizeJSON(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return canonicalRaw(t)
	case json.RawMessage:
		return canonicalRaw(t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return canonicalRaw(b)
	}
}

// Fingerprint identifies an item by the sha256 of its canonical JSON, so two
// items differing only in key order or whitespace share a fingerprint.
func Fingerprint(v any) (string, error) {
	b, err := CanonicalizeJSON(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// struct field order is declaration order; decoding into any and re-encoding sorts keys.
func canonicalRaw(b []byte) ([]byte, error) {
	var obj any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}
