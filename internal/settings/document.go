// Package settings wraps the server's settings document. The document is
// kept opaque; only the dashboard layout and visibility flags are read or
// written, and saves are sent as a JSON Patch against the cached copy.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wI2L/jsondiff"

	"github.com/Dicklesworthstone/shokodash/internal/layout"
)

// Paths inside the document.
var (
	layoutPath    = []string{"WebUI_Settings", "layout", "dashboard"}
	dashboardPath = []string{"WebUI_Settings", "dashboard"}
)

// ErrNotObject is returned when the document or a value on a path is not a
// JSON object.
var ErrNotObject = errors.New("settings: not a JSON object")

// Document is an immutable settings document.
type Document struct {
	raw json.RawMessage
}

// Parse validates data as a JSON object.
func Parse(data []byte) (Document, error) {
	if _, err := decodeObject(data); err != nil {
		return Document{}, err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return Document{raw: cp}, nil
}

// Raw returns the document bytes.
func (d Document) Raw() json.RawMessage {
	return d.raw
}

// IsZero reports whether the document is empty.
func (d Document) IsZero() bool {
	return len(d.raw) == 0
}

// Layout returns the persisted dashboard layout. ok is false when the
// document has none.
func (d Document) Layout() (l layout.Layouts, ok bool, err error) {
	v, found, err := d.lookup(layoutPath)
	if err != nil || !found {
		return nil, false, err
	}
	if err := json.Unmarshal(v, &l); err != nil {
		return nil, false, fmt.Errorf("settings: decode layout: %w", err)
	}
	for bp := range l {
		if !bp.Valid() {
			delete(l, bp)
		}
	}
	return l, len(l) > 0, nil
}

// LayoutOrDefault returns the persisted layout, or the default one.
func (d Document) LayoutOrDefault() (layout.Layouts, error) {
	l, ok, err := d.Layout()
	if err != nil {
		return nil, err
	}
	if !ok {
		return layout.Default(), nil
	}
	return l, nil
}

// Flags holds the dashboard section's boolean switches, keyed by their
// document name (hideQueueProcessor, combineContinueWatching, ...).
type Flags map[string]bool

// Flags returns the boolean values of the dashboard section. Non-boolean
// entries are skipped.
func (d Document) Flags() (Flags, error) {
	v, found, err := d.lookup(dashboardPath)
	if err != nil || !found {
		return Flags{}, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(v, &m); err != nil {
		return nil, fmt.Errorf("%w: dashboard", ErrNotObject)
	}
	flags := make(Flags, len(m))
	for k, raw := range m {
		var b bool
		if json.Unmarshal(raw, &b) == nil {
			flags[k] = b
		}
	}
	return flags, nil
}

// WithLayout returns a copy of the document with the layout replaced.
func (d Document) WithLayout(l layout.Layouts) (Document, error) {
	return d.with(layoutPath, l)
}

// WithFlag returns a copy of the document with one dashboard flag set.
func (d Document) WithFlag(name string, value bool) (Document, error) {
	path := append(append([]string{}, dashboardPath...), name)
	return d.with(path, value)
}

// Diff returns the JSON Patch that turns d into target.
func (d Document) Diff(target Document) (jsondiff.Patch, error) {
	src := d.raw
	if len(src) == 0 {
		src = []byte("{}")
	}
	patch, err := jsondiff.CompareJSON(src, target.raw)
	if err != nil {
		return nil, fmt.Errorf("settings: diff: %w", err)
	}
	return patch, nil
}

func (d Document) lookup(path []string) (json.RawMessage, bool, error) {
	if len(d.raw) == 0 {
		return nil, false, nil
	}
	cur := json.RawMessage(d.raw)
	for _, key := range path {
		obj, err := decodeObject(cur)
		if err != nil {
			return nil, false, err
		}
		next, ok := obj[key]
		if !ok || bytes.Equal(bytes.TrimSpace(next), []byte("null")) {
			return nil, false, nil
		}
		cur = next
	}
	return cur, true, nil
}

// with sets value at path, creating intermediate objects. Sibling values
// keep their exact encoding.
func (d Document) with(path []string, value any) (Document, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return Document{}, fmt.Errorf("settings: encode %v: %w", path, err)
	}
	root := d.raw
	if len(root) == 0 {
		root = []byte("{}")
	}
	out, err := setPath(root, path, encoded)
	if err != nil {
		return Document{}, err
	}
	return Document{raw: out}, nil
}

func setPath(data json.RawMessage, path []string, value json.RawMessage) (json.RawMessage, error) {
	if len(path) == 0 {
		return value, nil
	}
	obj, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	child, ok := obj[path[0]]
	if !ok || bytes.Equal(bytes.TrimSpace(child), []byte("null")) {
		child = json.RawMessage("{}")
	}
	updated, err := setPath(child, path[1:], value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path[0], err)
	}
	obj[path[0]] = updated
	return json.Marshal(obj)
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, ErrNotObject
	}
	return obj, nil
}
