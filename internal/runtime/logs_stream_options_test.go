package runtime

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JNickson/kube-log-annotator/internal/collector"
	"github.com/JNickson/kube-log-annotator/internal/logpath"
	"github.com/JNickson/kube-log-annotator/internal/record"
	"github.com/stretchr/testify/require"
)

func TestLogStreamOptionsFromQuery(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		want        logStreamOptions
		wantErr     bool
		errContains string
	}{
		{
			name: "defaults",
			url:  "/api/v1/logs/stream?namespace=default",
			want: logStreamOptions{
				Format:    logStreamFormatJSON,
				Namespace: "default",
				Buffer:    defaultLogStreamBuffer,
			},
		},
		{
			name: "parses explicit values",
			url:  "/api/v1/logs/stream?namespace=prod&pod=api-0&container=app&format=text&buffer=16",
			want: logStreamOptions{
				Format:    logStreamFormatText,
				Namespace: "prod",
				Pod:       "api-0",
				Container: "app",
				Buffer:    16,
			},
		},
		{
			name:        "missing namespace",
			url:         "/api/v1/logs/stream",
			wantErr:     true,
			errContains: "namespace required",
		},
		{
			name:        "invalid format",
			url:         "/api/v1/logs/stream?namespace=default&format=xml",
			wantErr:     true,
			errContains: "invalid format",
		},
		{
			name:        "invalid buffer",
			url:         "/api/v1/logs/stream?namespace=default&buffer=abc",
			wantErr:     true,
			errContains: "invalid buffer",
		},
		{
			name:        "buffer too large",
			url:         "/api/v1/logs/stream?namespace=default&buffer=20000",
			wantErr:     true,
			errContains: "buffer must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)

			got, err := logStreamOptionsFromQuery(req)

			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLogStreamOptionsMatches(t *testing.T) {
	entry := collector.Entry{
		Info: logpath.Info{Namespace: "default", PodName: "api-0", ContainerName: "app"},
	}

	tests := []struct {
		name string
		opts logStreamOptions
		want bool
	}{
		{name: "namespace only", opts: logStreamOptions{Namespace: "default"}, want: true},
		{name: "other namespace", opts: logStreamOptions{Namespace: "kube-system"}, want: false},
		{name: "matching pod", opts: logStreamOptions{Namespace: "default", Pod: "api-0"}, want: true},
		{name: "other pod", opts: logStreamOptions{Namespace: "default", Pod: "api-1"}, want: false},
		{name: "matching container", opts: logStreamOptions{Namespace: "default", Container: "app"}, want: true},
		{name: "other container", opts: logStreamOptions{Namespace: "default", Container: "sidecar"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.opts.matches(entry))
		})
	}
}

func TestWriteLogStreamEntry(t *testing.T) {
	entry := collector.Entry{
		Record: record.Record{
			"message": "hello",
			"kubernetes": map[string]any{
				"pod_name": "api-0",
			},
		},
	}

	tests := []struct {
		name    string
		format  logStreamFormat
		want    string
		wantErr bool
	}{
		{
			name:   "writes json ndjson line",
			format: logStreamFormatJSON,
			want:   "{\"kubernetes\":{\"pod_name\":\"api-0\"},\"message\":\"hello\"}\n",
		},
		{
			name:   "writes text line",
			format: logStreamFormatText,
			want:   "hello\n",
		},
		{
			name:    "rejects unknown format",
			format:  logStreamFormat("yaml"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder

			err := writeLogStreamEntry(&out, entry, tt.format)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, out.String())
		})
	}
}

func BenchmarkWriteLogStreamEntryJSON(b *testing.B) {
	entry := collector.Entry{
		Record: record.Record{
			"message":   "benchmark",
			"stream":    "stdout",
			"timestamp": "2026-02-19T12:00:00Z",
			"kubernetes": map[string]any{
				"namespace_name": "default",
				"pod_name":       "api-0",
			},
		},
	}

	var out strings.Builder

	b.ReportAllocs()
	for b.Loop() {
		out.Reset()
		if err := writeLogStreamEntry(&out, entry, logStreamFormatJSON); err != nil {
			b.Fatal(err)
		}
	}
}
