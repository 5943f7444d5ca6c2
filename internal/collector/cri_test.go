package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseCRILine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   criLine
		wantOK bool
	}{
		{
			name: "full stdout line",
			line: "2026-02-19T12:00:00.123456789Z stdout F hello world",
			want: criLine{
				Timestamp: time.Date(2026, time.February, 19, 12, 0, 0, 123456789, time.UTC),
				Stream:    "stdout",
				Message:   "hello world",
			},
			wantOK: true,
		},
		{
			name: "partial stderr line",
			line: "2026-02-19T12:00:01Z stderr P part one",
			want: criLine{
				Timestamp: time.Date(2026, time.February, 19, 12, 0, 1, 0, time.UTC),
				Stream:    "stderr",
				Partial:   true,
				Message:   "part one",
			},
			wantOK: true,
		},
		{
			name: "empty message",
			line: "2026-02-19T12:00:02Z stdout F",
			want: criLine{
				Timestamp: time.Date(2026, time.February, 19, 12, 0, 2, 0, time.UTC),
				Stream:    "stdout",
			},
			wantOK: true,
		},
		{
			name: "tag with flags",
			line: "2026-02-19T12:00:03Z stdout F:x keep spaces  inside",
			want: criLine{
				Timestamp: time.Date(2026, time.February, 19, 12, 0, 3, 0, time.UTC),
				Stream:    "stdout",
				Message:   "keep spaces  inside",
			},
			wantOK: true,
		},
		{name: "plain text", line: "hello world"},
		{name: "bad timestamp", line: "yesterday stdout F hello"},
		{name: "bad stream", line: "2026-02-19T12:00:00Z stdin F hello"},
		{name: "bad tag", line: "2026-02-19T12:00:00Z stdout X hello"},
		{name: "docker json", line: `{"log":"hello\n","stream":"stdout","time":"2026-02-19T12:00:00Z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCRILine(tt.line)

			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func BenchmarkParseCRILine(b *testing.B) {
	line := "2026-02-19T12:00:00.123456789Z stdout F benchmark-line-with-some-payload"

	for i := 0; i < b.N; i++ {
		if _, ok := parseCRILine(line); !ok {
			b.Fatal("expected a cri line")
		}
	}
}
