package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Record is an invoice as produced by extraction or supplied as ground truth.
// Leaf values are expected to be strings but are not type-checked.
type Record map[string]any

// LoadRecord reads a JSON object from path.
func LoadRecord(path string) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var r Record
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", path, err)
	}
	if r == nil {
		return nil, fmt.Errorf("decode record %s: not a json object", path)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode record %s: trailing data after object", path)
	}
	return r, nil
}

// MarshalIndented renders the record the way it is persisted.
func (r Record) MarshalIndented() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Leaf is one scalar value found while walking a record.
type Leaf struct {
	Key   string
	Value string
}

// Leaves walks the record depth-first (object keys sorted, arrays in order)
// and returns every scalar leaf whose key is in keys.
func (r Record) Leaves(keys FieldSet) []Leaf {
	var out []Leaf
	walkLeaves(map[string]any(r), "", keys, &out)
	return out
}

func walkLeaves(v any, key string, keys FieldSet, out *[]Leaf) {
	switch t := v.(type) {
	case map[string]any:
		names := make([]string, 0, len(t))
		for k := range t {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			walkLeaves(t[k], k, keys, out)
		}
	case Record:
		walkLeaves(map[string]any(t), key, keys, out)
	case []any:
		for _, item := range t {
			walkLeaves(item, key, keys, out)
		}
	default:
		if key != "" && keys.Contains(key) {
			*out = append(*out, Leaf{Key: key, Value: Stringify(t)})
		}
	}
}

// Stringify renders a decoded JSON value as report text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
