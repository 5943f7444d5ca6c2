// Package record holds the structured log event that flows through the collector.
package record

import "github.com/JNickson/kube-log-annotator/internal/fieldpath"

// Record is an open, nested mapping from keys to values.
type Record map[string]any

// Insert sets value at path, creating intermediate maps and replacing any
// non-map value found on the way. An existing leaf is overwritten.
// Inserting at the root path is a no-op.
func (r Record) Insert(path fieldpath.Path, value any) {
	if path.IsRoot() {
		return
	}

	current := map[string]any(r)
	last := len(path.Keys) - 1
	for _, key := range path.Keys[:last] {
		current = nestedMap(current, key)
	}
	current[path.Keys[last]] = value
}

// Get returns the value stored at path and whether it exists.
func (r Record) Get(path fieldpath.Path) (any, bool) {
	var current any = map[string]any(r)

	for _, key := range path.Keys {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}

		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// GetString returns the string stored at path.
func (r Record) GetString(path fieldpath.Path) (string, bool) {
	v, ok := r.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func nestedMap(m map[string]any, key string) map[string]any {
	if next, ok := asMap(m[key]); ok {
		return next
	}

	next := map[string]any{}
	m[key] = next
	return next
}

func asMap(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case Record:
		return typed, true
	default:
		return nil, false
	}
}
