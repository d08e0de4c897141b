// Package statlog records completed-tick stats as zstd-compressed JSON lines.
// The trace is for offline analysis; it cannot be used to resume a run.
package statlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"mirror-ca/internal/sims/mirror"
)

var ErrClosed = errors.New("statlog: writer closed")

// Record is one line of the trace.
type Record struct {
	Run  string `json:"run"`
	Mode string `json:"mode"`
	mirror.Stats
}

// Writer appends JSON lines to a single .jsonl.zst file.
type Writer struct {
	path string

	mu    sync.Mutex
	f     *os.File
	enc   *zstd.Encoder
	w     *bufio.Writer
	lines int
}

// Create opens path for writing, creating parent directories.
func Create(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("statlog: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{path: path, f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Path returns the file being written.
func (w *Writer) Path() string { return w.path }

// Lines returns the number of records written so far.
func (w *Writer) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Write appends v as one JSON line. Lines are buffered until Flush or Close.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return ErrClosed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.lines++
	return nil
}

// WriteStats appends one stats record.
func (w *Writer) WriteStats(run string, mode mirror.Mode, s mirror.Stats) error {
	return w.Write(Record{Run: run, Mode: string(mode), Stats: s})
}

// Flush pushes buffered lines into the compressor and ends the current frame
// block so a concurrent reader sees them.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return ErrClosed
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

// Close flushes and closes the file. It is safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	var err error
	if ferr := w.w.Flush(); ferr != nil {
		err = ferr
	}
	if cerr := w.enc.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := w.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	w.w, w.enc, w.f = nil, nil, nil
	return err
}

// Read decodes every record in path, calling fn in file order. Returning an
// error from fn stops the scan.
func Read(path string, fn func(Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return fmt.Errorf("statlog: %s:%d: %w", path, line, err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadAll collects every record in path.
func ReadAll(path string) ([]Record, error) {
	var out []Record
	err := Read(path, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}
