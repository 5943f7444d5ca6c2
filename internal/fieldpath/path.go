// Package fieldpath addresses values inside a nested log record.
package fieldpath

import (
	"errors"
	"fmt"
	"strings"
)

// Path is an ordered list of raw key segments. The zero value is the record root.
type Path struct {
	Keys []string
}

// New builds a path from raw segments. Segments are never split.
func New(keys ...string) Path {
	out := make([]string, len(keys))
	copy(out, keys)
	return Path{Keys: out}
}

// Child returns a copy of the path with key appended as a single segment,
// even when key contains dots or quotes.
func (p Path) Child(key string) Path {
	keys := make([]string, len(p.Keys), len(p.Keys)+1)
	copy(keys, p.Keys)
	return Path{Keys: append(keys, key)}
}

// IsRoot reports whether the path points at the record itself.
func (p Path) IsRoot() bool {
	return len(p.Keys) == 0
}

// String renders the path in the notation accepted by Parse.
func (p Path) String() string {
	var b strings.Builder
	for i, key := range p.Keys {
		if i != 0 {
			b.WriteByte('.')
		}
		if needsQuoting(key) {
			b.WriteByte('"')
			b.WriteString(quoteEscaper.Replace(key))
			b.WriteByte('"')
			continue
		}
		b.WriteString(key)
	}
	return b.String()
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func needsQuoting(key string) bool {
	return key == "" || strings.ContainsAny(key, `."\`)
}

// Parse reads dotted notation such as `kubernetes.pod_name`. A segment that
// contains dots is written in double quotes, either dotted or in brackets:
// `kubernetes.pod_labels."app.kubernetes.io/name"` or
// `kubernetes.pod_labels["app.kubernetes.io/name"]`.
// A single leading dot is accepted and ignored.
func Parse(s string) (Path, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return Path{}, errors.New("empty field path")
	}

	var (
		keys []string
		cur  strings.Builder
	)

	for i := 0; i < len(s); {
		switch s[i] {
		case '"':
			end, err := readQuoted(s, i+1, &cur)
			if err != nil {
				return Path{}, fmt.Errorf("invalid field path %q: %w", s, err)
			}
			i = end
			if i < len(s) && s[i] != '.' && s[i] != '[' {
				return Path{}, fmt.Errorf("invalid field path %q: unexpected %q after quoted segment", s, s[i])
			}
		case '[':
			if i+1 >= len(s) || s[i+1] != '"' {
				return Path{}, fmt.Errorf("invalid field path %q: bracket segment must be quoted", s)
			}
			end, err := readQuoted(s, i+2, &cur)
			if err != nil {
				return Path{}, fmt.Errorf("invalid field path %q: %w", s, err)
			}
			if end >= len(s) || s[end] != ']' {
				return Path{}, fmt.Errorf("invalid field path %q: unclosed bracket", s)
			}
			i = end + 1
			if i < len(s) && s[i] != '.' && s[i] != '[' {
				return Path{}, fmt.Errorf("invalid field path %q: unexpected %q after bracket segment", s, s[i])
			}
		default:
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				if s[i] == '"' || s[i] == ']' {
					return Path{}, fmt.Errorf("invalid field path %q: %q inside segment", s, s[i])
				}
				cur.WriteByte(s[i])
				i++
			}
			if cur.Len() == 0 {
				return Path{}, fmt.Errorf("invalid field path %q: empty segment", s)
			}
		}

		keys = append(keys, cur.String())
		cur.Reset()

		if i < len(s) && s[i] == '.' {
			// a trailing separator leaves an empty segment
			i++
			if i == len(s) {
				return Path{}, fmt.Errorf("invalid field path %q: empty segment", s)
			}
		}
	}

	return Path{Keys: keys}, nil
}

// readQuoted copies a quoted segment starting after the opening quote and
// returns the index just past the closing quote.
func readQuoted(s string, i int, cur *strings.Builder) (int, error) {
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return 0, errors.New("dangling escape")
			}
			cur.WriteByte(s[i+1])
			i += 2
		case '"':
			return i + 1, nil
		default:
			cur.WriteByte(s[i])
			i++
		}
	}
	return 0, errors.New("unterminated quote")
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalText renders the path for JSON and YAML encoders.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a path from JSON and YAML decoders.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
