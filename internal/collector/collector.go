// Package collector tails container log files and emits annotated records.
package collector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JNickson/kube-log-annotator/internal/logpath"
	"github.com/JNickson/kube-log-annotator/internal/metrics"
	"github.com/JNickson/kube-log-annotator/internal/record"
	"github.com/JNickson/kube-log-annotator/internal/utils"
	"github.com/fsnotify/fsnotify"
)

const (
	defaultPollInterval = time.Second

	// MaxLineSize caps a single record. Longer lines are cut and the rest up to
	// the next newline is dropped.
	MaxLineSize = 64 * 1024
)

// Annotator is satisfied by annotator.Annotator.
type Annotator interface {
	Annotate(rec record.Record, file string) (logpath.Info, bool)
}

type Options struct {
	LogDir string
	// ReadFromStart reads files found at startup from offset 0 instead of
	// their current end. Files appearing later are always read in full.
	ReadFromStart bool
	PollInterval  time.Duration
	Metrics       *metrics.Metrics
}

type Collector struct {
	annotator Annotator
	sink      Sink
	opts      Options
	metrics   *metrics.Metrics

	// owned by the Run goroutine
	files      map[string]*tailedFile
	watched    map[string]struct{}
	discovered bool
}

type tailedFile struct {
	path   string
	file   *os.File
	info   os.FileInfo
	reader *bufio.Reader
	offset int64

	partial    []byte
	skipping   bool
	missLogged bool
}

func New(annotator Annotator, sink Sink, opts Options) *Collector {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	return &Collector{
		annotator: annotator,
		sink:      sink,
		opts:      opts,
		metrics:   opts.Metrics,
		files:     make(map[string]*tailedFile),
		watched:   make(map[string]struct{}),
	}
}

// Run tails files until ctx is done. Discovery happens on every tick and on
// file system events; a missing watcher only costs latency.
func (c *Collector) Run(ctx context.Context) error {
	if _, err := filepath.Glob(logpath.Glob(c.opts.LogDir)); err != nil {
		return fmt.Errorf("invalid log dir %q: %w", c.opts.LogDir, err)
	}

	var (
		events  <-chan fsnotify.Event
		errs    <-chan error
		watcher *fsnotify.Watcher
	)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("file watcher unavailable, polling only", "error", err)
		watcher = nil
	} else {
		defer watcher.Close()
		events = watcher.Events
		errs = watcher.Errors
	}
	defer c.close()

	slog.Info("starting log collector", "dir", c.opts.LogDir, "fromStart", c.opts.ReadFromStart)

	c.reconcile(watcher)
	c.readAll()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("log collector stopped", "files", len(c.files))
			return nil
		case <-ticker.C:
			c.reconcile(watcher)
			c.readAll()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			c.handleEvent(watcher, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}

func (c *Collector) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		c.reconcile(watcher)
	}

	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
		if tf, ok := c.files[ev.Name]; ok {
			c.readFile(tf)
		}
	}
}

func (c *Collector) reconcile(watcher *fsnotify.Watcher) {
	matches, err := filepath.Glob(logpath.Glob(c.opts.LogDir))
	if err != nil {
		slog.Error("failed to list log files", "dir", c.opts.LogDir, "error", err)
		return
	}

	active := make(map[string]struct{}, len(matches))

	for _, file := range matches {
		active[file] = struct{}{}

		if _, exists := c.files[file]; exists {
			continue
		}

		tf := &tailedFile{path: file}
		if !c.discovered && !c.opts.ReadFromStart {
			if fi, err := os.Stat(file); err == nil {
				tf.offset = fi.Size()
			}
		}

		c.files[file] = tf
		slog.Debug("tailing log file", "path", file, "offset", tf.offset)
	}

	for file, tf := range c.files {
		if _, exists := active[file]; !exists {
			// renamed away or deleted; the open handle still has the tail
			c.drain(tf)
			delete(c.files, file)
			slog.Debug("stopped tailing log file", "path", file)
		}
	}

	c.discovered = true
	c.metrics.Files.Set(float64(len(c.files)))

	if watcher != nil {
		c.syncWatches(watcher)
	}
}

// syncWatches watches the log dir, every pod dir and every container dir so
// new files and writes are seen without waiting for the next tick.
func (c *Collector) syncWatches(watcher *fsnotify.Watcher) {
	dirs := []string{c.opts.LogDir}
	for _, pattern := range []string{"*", filepath.Join("*", "*")} {
		matches, _ := filepath.Glob(filepath.Join(c.opts.LogDir, pattern))
		dirs = append(dirs, matches...)
	}

	current := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		current[dir] = struct{}{}

		if _, ok := c.watched[dir]; ok {
			continue
		}
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			slog.Debug("failed to watch dir", "dir", dir, "error", err)
			continue
		}
		c.watched[dir] = struct{}{}
	}

	// removed dirs drop their watch on their own
	for dir := range c.watched {
		if _, ok := current[dir]; !ok {
			delete(c.watched, dir)
		}
	}
}

func (c *Collector) readAll() {
	for _, tf := range c.files {
		c.readFile(tf)
	}
}

func (c *Collector) close() {
	for _, tf := range c.files {
		tf.closeFile()
	}
}

// readFile reads new lines of tf. A different file behind the same path
// means the old one was rotated: its tail is drained first and the new file
// is read from offset 0.
func (c *Collector) readFile(tf *tailedFile) {
	if tf.file != nil {
		cur, err := os.Stat(tf.path)
		if err == nil && !os.SameFile(tf.info, cur) {
			slog.Info("log file rotated", "path", tf.path)
			c.metrics.Rotations.Inc()
			c.drain(tf)
			tf.offset = 0
		}
	}

	if tf.file == nil && !c.open(tf) {
		return
	}

	fi, err := tf.file.Stat()
	if err != nil {
		slog.Warn("failed to stat log file", "path", tf.path, "error", err)
		return
	}

	if fi.Size() < tf.offset {
		slog.Info("log file truncated, reading from start", "path", tf.path)
		if !c.seek(tf, 0) {
			return
		}
	}

	c.readLines(tf)
}

func (c *Collector) open(tf *tailedFile) bool {
	f, err := os.Open(tf.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to open log file", "path", tf.path, "error", err)
		}
		return false
	}

	fi, err := f.Stat()
	if err != nil {
		slog.Warn("failed to stat log file", "path", tf.path, "error", err)
		f.Close()
		return false
	}

	tf.file = f
	tf.info = fi
	tf.reader = bufio.NewReaderSize(f, MaxLineSize)

	// a start offset past the end belongs to an earlier file
	offset := tf.offset
	if offset > fi.Size() {
		offset = 0
	}
	if !c.seek(tf, offset) {
		tf.closeFile()
		return false
	}
	return true
}

func (c *Collector) seek(tf *tailedFile, offset int64) bool {
	if _, err := tf.file.Seek(offset, io.SeekStart); err != nil {
		slog.Warn("failed to seek log file", "path", tf.path, "error", err)
		return false
	}
	tf.reader.Reset(tf.file)
	tf.offset = offset
	tf.partial = nil
	tf.skipping = false
	return true
}

// drain reads the open handle to EOF, emits a trailing unterminated line and
// closes the handle.
func (c *Collector) drain(tf *tailedFile) {
	if tf.file == nil {
		return
	}

	c.readLines(tf)
	if len(tf.partial) > 0 && !tf.skipping {
		c.emit(tf, strings.TrimSuffix(string(tf.partial), "\r"))
	}
	tf.closeFile()
}

func (c *Collector) readLines(tf *tailedFile) {
	for {
		chunk, err := tf.reader.ReadSlice('\n')
		tf.offset += int64(len(chunk))

		if n := len(chunk); n > 0 && chunk[n-1] == '\n' {
			c.completeLine(tf, chunk[:n-1])
		} else if n > 0 {
			c.appendPartial(tf, chunk)
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("failed to read log file", "path", tf.path, "error", err)
			}
			return
		}
	}
}

func (c *Collector) completeLine(tf *tailedFile, chunk []byte) {
	if tf.skipping {
		tf.skipping = false
		return
	}

	line := chunk
	if len(tf.partial) > 0 {
		line = append(tf.partial, chunk...)
		tf.partial = nil
	}
	if len(line) > MaxLineSize {
		c.truncated(tf)
		line = line[:MaxLineSize]
	}

	c.emit(tf, strings.TrimSuffix(string(line), "\r"))
}

func (c *Collector) appendPartial(tf *tailedFile, chunk []byte) {
	if tf.skipping {
		return
	}

	tf.partial = append(tf.partial, chunk...)
	if len(tf.partial) < MaxLineSize {
		return
	}

	c.truncated(tf)
	c.emit(tf, string(tf.partial[:MaxLineSize]))
	tf.partial = nil
	tf.skipping = true
}

func (c *Collector) truncated(tf *tailedFile) {
	slog.Warn("log line exceeds max size, truncating", "path", tf.path, "limit", MaxLineSize)
	c.metrics.TruncatedLines.Inc()
}

func (tf *tailedFile) closeFile() {
	if tf.file == nil {
		return
	}
	tf.file.Close()
	tf.file = nil
	tf.info = nil
	tf.reader = nil
	tf.partial = nil
	tf.skipping = false
}

func (c *Collector) emit(tf *tailedFile, line string) {
	rec := record.Record{"file": tf.path}

	if cri, ok := parseCRILine(line); ok {
		rec["message"] = cri.Message
		rec["stream"] = cri.Stream
		rec["timestamp"] = cri.Timestamp.UTC().Format(time.RFC3339Nano)
		if cri.Partial {
			rec["partial"] = true
		}
	} else {
		rec["message"] = line
		rec["timestamp"] = utils.Now().UTC().Format(time.RFC3339Nano)
	}

	info, annotated := c.annotator.Annotate(rec, tf.path)
	if !annotated {
		info, _ = logpath.Parse(tf.path)

		if !tf.missLogged {
			slog.Debug("no pod metadata for log file", "path", tf.path)
			tf.missLogged = true
		}
	}

	c.metrics.Line(annotated).Inc()

	if err := c.sink.Write(Entry{Record: rec, Info: info, Annotated: annotated}); err != nil {
		slog.Error("failed to write log record", "path", tf.path, "error", err)
	}
}
