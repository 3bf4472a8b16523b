// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Document is a JSON object that remembers its key order, so a record file
// can be edited in place without reordering or dropping fields the typed
// PaperRecord does not know about.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// ParseDocument decodes a JSON object.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	doc := &Document{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}
		if _, dup := doc.values[key]; !dup {
			doc.keys = append(doc.keys, key)
		}
		doc.values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadDocument reads and parses a record file. Parse failures wrap
// ErrInvalidRecord.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, path, err)
	}
	return doc, nil
}

// Value returns the decoded value of key, or nil.
func (d *Document) Value(key string) any {
	raw, ok := d.values[key]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// String returns the trimmed text of key.
func (d *Document) String(key string) string {
	return Text(d.Value(key))
}

// SetString sets key to a JSON string, appending the key if it is new.
func (d *Document) SetString(key, value string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(value)
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Map returns the document as a generic object.
func (d *Document) Map() map[string]any {
	m := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		m[k] = d.Value(k)
	}
	return m
}

// MarshalIndent renders the document with two-space indentation, keys in
// their original order and non-ASCII text left unescaped.
func (d *Document) MarshalIndent() ([]byte, error) {
	var compact bytes.Buffer
	enc := json.NewEncoder(&compact)
	enc.SetEscapeHTML(false)

	compact.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		compact.WriteByte(':')
		compact.Write(d.values[k])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
