package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-relations/pkg/record"
)

// maxLine bounds one JSON document. Literature records with thousands of
// authors run into megabytes.
const maxLine = 64 << 20

// JSONLines reads <dir>/<category>.jsonl, or its gzip (.jsonl.gz) or snappy
// framed (.jsonl.sz) form, one record per line. Lines may hold the record itself or a search-scan envelope
// {"_source": {...}}.
type JSONLines struct {
	dir string
}

// NewJSONLines creates a source over dir.
func NewJSONLines(dir string) (*JSONLines, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", dir)
	}
	return &JSONLines{dir: dir}, nil
}

// Candidate files of a category, in lookup order.
var encodings = []struct {
	suffix string
	open   func(path string) (io.ReadCloser, error)
}{
	{".jsonl", openMapped},
	{".jsonl.gz", openGzip},
	{".jsonl.sz", openSnappy},
}

func (s *JSONLines) open(category string) (io.ReadCloser, string, error) {
	if _, err := Schema(category); err != nil {
		return nil, "", err
	}
	base := filepath.Join(s.dir, category)
	for _, enc := range encodings {
		path := base + enc.suffix
		r, err := enc.open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return r, path, err
	}
	return nil, base + ".jsonl", os.ErrNotExist
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error {
	return r.close()
}

// openMapped memory-maps a plain dump.
func openMapped(path string) (io.ReadCloser, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return readCloser{Reader: io.NewSectionReader(m, 0, int64(m.Len())), close: m.Close}, nil
}

func openGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return readCloser{Reader: zr, close: func() error {
		zerr := zr.Close()
		if err := f.Close(); err != nil {
			return err
		}
		return zerr
	}}, nil
}

// openSnappy reads a snappy framed stream.
func openSnappy(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return readCloser{Reader: snappy.NewReader(f), close: f.Close}, nil
}

// Scan implements Source. A missing file means the category is empty.
func (s *JSONLines) Scan(ctx context.Context, category string, fields []string, fn func(record.Record) error) (retErr error) {
	r, path, err := s.open(category)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		rec, err := record.Decode(data)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if inner := record.Map(rec["_source"]); inner != nil {
			rec = record.Record(inner)
		}
		if err := fn(rec.Project(fields)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Close implements Source.
func (s *JSONLines) Close() error {
	return nil
}
