package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JNickson/kube-log-annotator/internal/collector"
)

type logStreamFormat string

const (
	logStreamFormatText logStreamFormat = "text"
	logStreamFormatJSON logStreamFormat = "json"
)

type logStreamOptions struct {
	Format    logStreamFormat
	Namespace string
	Pod       string
	Container string
	Buffer    int
}

const (
	defaultLogStreamBuffer = 256
	minLogStreamBuffer     = 1
	maxLogStreamBuffer     = 10000
)

func logStreamOptionsFromQuery(r *http.Request) (logStreamOptions, error) {
	q := r.URL.Query()

	namespace := q.Get("namespace")
	if namespace == "" {
		return logStreamOptions{}, errors.New("namespace required")
	}

	format := logStreamFormatJSON
	if raw := q.Get("format"); raw != "" {
		switch logStreamFormat(raw) {
		case logStreamFormatText, logStreamFormatJSON:
			format = logStreamFormat(raw)
		default:
			return logStreamOptions{}, fmt.Errorf("invalid format: %s", raw)
		}
	}

	buffer := defaultLogStreamBuffer
	if raw := q.Get("buffer"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return logStreamOptions{}, fmt.Errorf("invalid buffer: %w", err)
		}
		if v < minLogStreamBuffer || v > maxLogStreamBuffer {
			return logStreamOptions{}, fmt.Errorf(
				"buffer must be between %d and %d",
				minLogStreamBuffer,
				maxLogStreamBuffer,
			)
		}
		buffer = v
	}

	return logStreamOptions{
		Format:    format,
		Namespace: namespace,
		Pod:       q.Get("pod"),
		Container: q.Get("container"),
		Buffer:    buffer,
	}, nil
}

func (o logStreamOptions) matches(entry collector.Entry) bool {
	if entry.Info.Namespace != o.Namespace {
		return false
	}
	if o.Pod != "" && entry.Info.PodName != o.Pod {
		return false
	}
	if o.Container != "" && entry.Info.ContainerName != o.Container {
		return false
	}
	return true
}

func writeLogStreamEntry(w io.Writer, entry collector.Entry, format logStreamFormat) error {
	switch format {
	case logStreamFormatJSON:
		b, err := json.Marshal(entry.Record)
		if err != nil {
			return err
		}

		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}

		return nil
	case logStreamFormatText:
		msg, _ := entry.Record["message"].(string)
		_, err := io.WriteString(w, msg+"\n")
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
