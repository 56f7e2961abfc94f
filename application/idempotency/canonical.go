package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// canonicalize renders a JSON value with object keys recursively sorted and
// array order preserved, so payloads that differ only in key order produce
// the same bytes.
func canonicalize(value interface{}) (string, error) {
	var b strings.Builder
	if err := writeCanonical(&b, value); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, value interface{}) error {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			name, err := json.Marshal(k)
			if err != nil {
				return err
			}
			b.Write(name)
			b.WriteByte(':')
			if err := writeCanonical(b, v[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case []interface{}:
		b.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, elem); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("canonicalize: %w", err)
		}
		b.Write(raw)
		return nil
	}
}

// requestHash hashes the scope together with the canonical form of the raw
// JSON payload. A payload that is not valid JSON is hashed as an opaque
// string so the guard still works for non-JSON bodies.
func requestHash(scope string, payload []byte) (string, error) {
	var decoded interface{}
	canonical := string(payload)
	if len(payload) > 0 && json.Unmarshal(payload, &decoded) == nil {
		c, err := canonicalize(decoded)
		if err != nil {
			return "", err
		}
		canonical = c
	}

	sum := sha256.Sum256([]byte(scope + "|" + canonical))
	return hex.EncodeToString(sum[:]), nil
}
