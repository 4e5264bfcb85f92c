package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList reads a list response. The backend wraps arrays in an object
// keyed by resource ({"enquiries": [...], "total": n}); a missing or null
// field is an empty list and a bare array is accepted too. Anything else
// that does not decode is ErrMalformed.
func decodeList[T any](body []byte, field string) ([]T, int, error) {
	trimmed := bytes.TrimSpace(body)
	items := make([]T, 0)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return items, 0, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
		}
		return items, len(items), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
	}
	if raw, ok := envelope[field]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
		}
	}
	if items == nil {
		items = make([]T, 0)
	}
	total := len(items)
	if raw, ok := envelope["total"]; ok {
		var declared int
		if err := json.Unmarshal(raw, &declared); err == nil && declared >= total {
			total = declared
		}
	}
	return items, total, nil
}

// decodeItem reads a single resource, accepting either the bare object or
// an object wrapped under field. An empty or null body, or a null under
// field, is ErrMalformed rather than a zero-value record.
func decodeItem[T any](body []byte, field string) (*T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty %s", ErrMalformed, field)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
	}
	if raw, ok := envelope[field]; ok {
		raw = bytes.TrimSpace(raw)
		switch {
		case bytes.Equal(raw, []byte("null")):
			return nil, fmt.Errorf("%w: empty %s", ErrMalformed, field)
		case len(raw) > 0 && raw[0] == '{':
			trimmed = raw
		}
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, field, err)
	}
	return &item, nil
}
