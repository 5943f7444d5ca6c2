package fieldpath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        []string
		errContains string
	}{
		{
			name: "single segment",
			in:   "message",
			want: []string{"message"},
		},
		{
			name: "dotted",
			in:   "kubernetes.pod_name",
			want: []string{"kubernetes", "pod_name"},
		},
		{
			name: "leading dot",
			in:   ".kubernetes.pod_name",
			want: []string{"kubernetes", "pod_name"},
		},
		{
			name: "quoted segment keeps dots",
			in:   `kubernetes.pod_labels."app.kubernetes.io/name"`,
			want: []string{"kubernetes", "pod_labels", "app.kubernetes.io/name"},
		},
		{
			name: "escaped quote",
			in:   `a."b\"c"`,
			want: []string{"a", `b"c`},
		},
		{
			name: "bracket segment keeps dots",
			in:   `kubernetes.pod_labels["app.kubernetes.io/name"]`,
			want: []string{"kubernetes", "pod_labels", "app.kubernetes.io/name"},
		},
		{
			name: "bracket segment followed by more",
			in:   `a["b.c"].d["e"]`,
			want: []string{"a", "b.c", "d", "e"},
		},
		{
			name: "leading bracket",
			in:   `["a.b"].c`,
			want: []string{"a.b", "c"},
		},
		{
			name:        "unquoted bracket",
			in:          `a[b]`,
			errContains: "bracket segment must be quoted",
		},
		{
			name:        "unclosed bracket",
			in:          `a["b"`,
			errContains: "unclosed bracket",
		},
		{
			name:        "garbage after bracket",
			in:          `a["b"]c`,
			errContains: "after bracket segment",
		},
		{
			name:        "empty",
			in:          "",
			errContains: "empty field path",
		},
		{
			name:        "double dot",
			in:          "a..b",
			errContains: "empty segment",
		},
		{
			name:        "trailing dot",
			in:          "a.",
			errContains: "empty segment",
		},
		{
			name:        "unterminated quote",
			in:          `a."b`,
			errContains: "unterminated quote",
		},
		{
			name:        "garbage after quote",
			in:          `a."b"c`,
			errContains: "after quoted segment",
		},
		{
			name:        "quote inside bare segment",
			in:          `ab"c"`,
			errContains: "inside segment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)

			if tt.errContains != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got.Keys)
		})
	}
}

func TestChildKeepsRawSegment(t *testing.T) {
	parent := MustParse("kubernetes.pod_labels")

	child := parent.Child("app.kubernetes.io/name")

	require.Equal(t, []string{"kubernetes", "pod_labels", "app.kubernetes.io/name"}, child.Keys)
	require.Equal(t, []string{"kubernetes", "pod_labels"}, parent.Keys)
}

func TestChildDoesNotAlias(t *testing.T) {
	parent := Path{Keys: make([]string, 1, 4)}
	parent.Keys[0] = "root"

	a := parent.Child("a")
	b := parent.Child("b")

	require.Equal(t, []string{"root", "a"}, a.Keys)
	require.Equal(t, []string{"root", "b"}, b.Keys)
}

func TestStringRoundTrip(t *testing.T) {
	paths := []Path{
		New("kubernetes", "pod_name"),
		New("kubernetes", "pod_labels", "app.kubernetes.io/name"),
		New("a", `quo"te`),
		New("a", `back\slash`),
		New("a", ""),
	}

	for _, p := range paths {
		t.Run(p.String(), func(t *testing.T) {
			parsed, err := Parse(p.String())
			require.NoError(t, err)
			require.Equal(t, p.Keys, parsed.Keys)
		})
	}
}

func TestTextMarshaling(t *testing.T) {
	type wrapper struct {
		Field Path `json:"field"`
	}

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"field":"kubernetes.\"a.b\""}`), &w))
	require.Equal(t, []string{"kubernetes", "a.b"}, w.Field.Keys)

	out, err := json.Marshal(w)
	require.NoError(t, err)
	require.JSONEq(t, `{"field":"kubernetes.\"a.b\""}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"field":""}`), &w))
}

func TestIsRoot(t *testing.T) {
	require.True(t, Path{}.IsRoot())
	require.False(t, New("a").IsRoot())
}
