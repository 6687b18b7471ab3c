package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
)

// DefaultBufferSize is the number of pending bytes a sink holds before it
// writes them out.
const DefaultBufferSize = 4096

// FileSink buffers log lines to a file, or to stdout for "-".
//
// A failed write keeps the unwritten bytes pending and rejects the line
// being offered, so offering the same line again retries the write without
// losing or duplicating records.
type FileSink struct {
	w       io.Writer
	closer  io.Closer
	path    string
	pending []byte
	size    int
}

// CreateSink truncates path and returns a sink writing to it.
func CreateSink(path string) (*FileSink, error) {
	if path == config.StdoutOutput {
		return NewSink(os.Stdout, path), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrIO, err)
	}
	s := NewSink(f, path)
	s.closer = f
	return s, nil
}

// NewSink wraps w. Closing the sink flushes but does not close w.
func NewSink(w io.Writer, name string) *FileSink {
	return NewSinkSize(w, name, DefaultBufferSize)
}

// NewSinkSize is NewSink with a buffer of size bytes; size <= 0 writes
// every line through immediately.
func NewSinkSize(w io.Writer, name string, size int) *FileSink {
	return &FileSink{w: w, path: name, size: max(size, 0), pending: make([]byte, 0, max(size, 0))}
}

func (s *FileSink) Path() string { return s.path }

// WriteLine accepts line once everything pending before it is written.
func (s *FileSink) WriteLine(line string) error {
	if len(s.pending)+len(line) <= s.size {
		s.pending = append(s.pending, line...)
		return nil
	}
	if err := s.drain(); err != nil {
		return err
	}
	if len(line) <= s.size {
		s.pending = append(s.pending, line...)
		return nil
	}

	n, err := s.w.Write([]byte(line))
	if n == 0 && err != nil {
		return fmt.Errorf("%w: write %s: %v", dynamo.ErrIO, s.path, err)
	}
	// partially written: the line counts as accepted and its tail waits
	s.pending = append(s.pending, line[n:]...)
	return nil
}

func (s *FileSink) drain() error {
	for len(s.pending) > 0 {
		n, err := s.w.Write(s.pending)
		s.pending = s.pending[:copy(s.pending, s.pending[n:])]
		if err != nil {
			return fmt.Errorf("%w: write %s: %v", dynamo.ErrIO, s.path, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: write %s: %v", dynamo.ErrIO, s.path, io.ErrShortWrite)
		}
	}
	return nil
}

func (s *FileSink) Flush() error {
	if err := s.drain(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	err := s.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("%w: close %s: %v", dynamo.ErrIO, s.path, cerr)
		}
		s.closer = nil
	}
	return err
}

// ReadLog parses an energy log. Blank lines are skipped.
func ReadLog(path string) ([]metrics.EnergyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrIO, err)
	}
	defer f.Close()
	return ParseLog(f)
}

func ParseLog(r io.Reader) ([]metrics.EnergyRecord, error) {
	records := make([]metrics.EnergyRecord, 0)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := metrics.ParseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrIO, err)
	}
	return records, nil
}
