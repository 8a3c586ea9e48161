package instrument

import (
	"encoding/json"
	"net/http"
	"strings"
)

const masked = "***"

// Masker redacts sensitive keys in log attributes, headers and JSON bodies.
// Key matching is case-insensitive.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker builds a Masker for fields. Blank entries are ignored.
func NewMasker(fields []string) *Masker {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			keys[f] = struct{}{}
		}
	}
	return &Masker{keys: keys}
}

// Empty reports whether nothing would be redacted.
func (m *Masker) Empty() bool { return m == nil || len(m.keys) == 0 }

// Sensitive reports whether key is redacted.
func (m *Masker) Sensitive(key string) bool {
	if m.Empty() {
		return false
	}
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Headers returns a copy of h with sensitive headers redacted.
func (m *Masker) Headers(h http.Header) http.Header {
	if m.Empty() {
		return h
	}
	out := h.Clone()
	for k := range out {
		if m.Sensitive(k) {
			out.Set(k, masked)
		}
	}
	return out
}

// Value walks decoded JSON (maps and slices) and redacts sensitive keys.
func (m *Masker) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Sensitive(k) {
				out[k] = masked
				continue
			}
			out[k] = m.Value(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = inner
		}
		return m.Value(out)
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Value(inner)
		}
		return out
	default:
		return v
	}
}

// JSON decodes b, redacts it and reports whether b was JSON at all.
func (m *Masker) JSON(b []byte) (any, bool) {
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return m.Value(v), true
}
