package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/autochart/dataset"
)

// ============================================================================
// JSON HELPER — Array of objects or one object per line
// ============================================================================
// Columns appear in first-seen key order. Scalars are kept as their text,
// null becomes a missing cell and nested values are kept as raw JSON.
// ============================================================================

// ErrNotRecords means the JSON input is not a list of objects.
var ErrNotRecords = errors.New("JSON input must be an array of objects or one object per line")

// ParseJSON parses a JSON array of objects or JSON Lines into a Table.
func ParseJSON(data []byte) (*dataset.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	var objects []map[string]string
	var order []string
	seen := make(map[string]bool)
	add := func(obj map[string]string, keys []string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
		objects = append(objects, obj)
	}

	switch tok {
	case json.Delim('['):
		for dec.More() {
			obj, keys, err := readObject(dec)
			if err != nil {
				return nil, err
			}
			add(obj, keys)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to read JSON: %w", err)
		}
	case json.Delim('{'):
		obj, keys, err := readFields(dec)
		if err != nil {
			return nil, err
		}
		add(obj, keys)
		for {
			obj, keys, err := readObject(dec)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
			add(obj, keys)
		}
	default:
		return nil, ErrNotRecords
	}

	if len(order) == 0 {
		return nil, ErrNotRecords
	}
	rows := make([][]string, len(objects))
	for i, obj := range objects {
		row := make([]string, len(order))
		for c, k := range order {
			row[c] = obj[k]
		}
		rows[i] = row
	}
	return dataset.New(order, rows)
}

// readObject consumes one whole object.
func readObject(dec *json.Decoder) (map[string]string, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}
		return nil, nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, nil, ErrNotRecords
	}
	return readFields(dec)
}

// readFields consumes the fields of an object whose '{' was already read.
func readFields(dec *json.Decoder) (map[string]string, []string, error) {
	obj := make(map[string]string)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read JSON key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, ErrNotRecords
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("failed to read JSON value for %q: %w", key, err)
		}
		if _, dup := obj[key]; !dup {
			keys = append(keys, key)
		}
		obj[key] = cellText(raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	return obj, keys, nil
}

func cellText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return str
		}
	}
	return s
}
