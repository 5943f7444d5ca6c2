package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/JNickson/kube-log-annotator/internal/logpath"
	"github.com/JNickson/kube-log-annotator/internal/record"
)

// Entry is one collected log line. Record must be treated as read-only once
// handed to a Sink.
type Entry struct {
	Record    record.Record
	Info      logpath.Info
	Annotated bool
}

type Sink interface {
	Write(entry Entry) error
}

// JSONSink writes one JSON object per line.
type JSONSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w}
}

func (s *JSONSink) Write(entry Entry) error {
	b, err := json.Marshal(entry.Record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.w.Write(append(b, '\n'))
	return err
}

// MultiSink writes to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Write(entry Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DiscardSink drops every entry.
type DiscardSink struct{}

func (DiscardSink) Write(Entry) error { return nil }
