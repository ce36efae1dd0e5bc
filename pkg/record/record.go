// Package record holds raw INSPIRE documents as decoded from the source store
// and the field-path extraction the builders run against them.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one decoded JSON document.
type Record map[string]any

// Decode parses a JSON document. Numbers are kept as json.Number so that
// record ids never pass through float64.
func Decode(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("decode record: document is null")
	}
	return rec, nil
}

// ControlNumber returns the record id, or "" when it is missing.
func (r Record) ControlNumber() string {
	return Scalar(r["control_number"])
}

// Project keeps only the top-level keys addressed by fields. Paths such as
// "authors.recid" or "$.authors[*]" keep the whole "authors" subtree.
func (r Record) Project(fields []string) Record {
	if len(fields) == 0 {
		return r
	}
	out := make(Record, len(fields))
	for _, f := range fields {
		key := topLevelKey(f)
		if v, ok := r[key]; ok {
			out[key] = v
		}
	}
	return out
}

func topLevelKey(path string) string {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "$"), ".")
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}

// Scalar renders a scalar JSON value as a string. Objects, arrays and nil
// render as "".
func Scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Map returns the element as an object, or nil.
func Map(elem any) map[string]any {
	switch m := elem.(type) {
	case map[string]any:
		return m
	case Record:
		return m
	default:
		return nil
	}
}

// String returns elem[key] rendered as a string, or "".
func String(elem any, key string) string {
	m := Map(elem)
	if m == nil {
		return ""
	}
	return Scalar(m[key])
}

// Bool interprets elem[key] as a flag. Non-empty strings count as true, the
// way INSPIRE's "current" marker is written.
func Bool(elem any, key string) bool {
	m := Map(elem)
	if m == nil {
		return false
	}
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return v != "" && !strings.EqualFold(v, "false")
	case nil:
		return false
	default:
		return Scalar(v) != "" && Scalar(v) != "0"
	}
}

// RecidFromRef extracts the trailing record id from an INSPIRE reference,
// either {"$ref": "http://host/api/institutions/902725"} or the bare URL.
func RecidFromRef(ref any) string {
	var url string
	switch r := ref.(type) {
	case string:
		url = r
	default:
		url = String(ref, "$ref")
	}
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return ""
	}
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
