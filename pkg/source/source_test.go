package source

import (
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-relations/pkg/record"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, s Source, category string, fields []string) []record.Record {
	t.Helper()
	var out []record.Record
	err := s.Scan(context.Background(), category, fields, func(r record.Record) error {
		out = append(out, r)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestJSONLines_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conferences.jsonl"),
		`{"control_number": 1, "acronym": "ICHEP", "address": [{"country_code": "FR"}]}`+"\n"+
			"\n"+
			`{"_index": "records-conferences", "_source": {"control_number": 2}}`+"\n")

	s, err := NewJSONLines(dir)
	require.NoError(t, err)
	defer s.Close()

	recs := collect(t, s, "conferences", []string{"$.control_number", "$.address"})
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].ControlNumber())
	assert.NotContains(t, recs[0], "acronym", "projected away")
	assert.Contains(t, recs[0], "address")
	assert.Equal(t, "2", recs[1].ControlNumber(), "envelope unwrapped")
}

func TestJSONLines_Gzip(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "journals.jsonl.gz"))
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(`{"control_number": 5, "publisher": ["Springer"]}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	s, err := NewJSONLines(dir)
	require.NoError(t, err)

	recs := collect(t, s, "journals", nil)
	require.Len(t, recs, 1)
	assert.Equal(t, "5", recs[0].ControlNumber())
}

func TestJSONLines_Snappy(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "experiments.jsonl.sz"))
	require.NoError(t, err)
	sw := snappy.NewBufferedWriter(f)
	_, err = sw.Write([]byte(`{"control_number": 1108541}` + "\n" + `{"control_number": 1108542}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, sw.Close())
	require.NoError(t, f.Close())

	s, err := NewJSONLines(dir)
	require.NoError(t, err)

	recs := collect(t, s, "experiments", nil)
	require.Len(t, recs, 2)
	assert.Equal(t, "1108542", recs[1].ControlNumber())
}

func TestJSONLines_PlainWinsAndEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "jobs.jsonl"), "")
	writeFile(t, filepath.Join(dir, "jobs.jsonl.sz"), "not snappy")

	s, err := NewJSONLines(dir)
	require.NoError(t, err)
	assert.Empty(t, collect(t, s, "jobs", nil))
}

func TestJSONLines_MissingAndUnknown(t *testing.T) {
	s, err := NewJSONLines(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, collect(t, s, "jobs", nil), "missing file is an empty category")

	err = s.Scan(context.Background(), "seminars", nil, func(record.Record) error { return nil })
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	_, err = NewJSONLines(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestJSONLines_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "experiments.jsonl"), "{\"control_number\": 1}\n{broken\n")
	s, err := NewJSONLines(dir)
	require.NoError(t, err)

	err = s.Scan(context.Background(), "experiments", nil, func(record.Record) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "experiments.jsonl:2")

	stop := errors.New("stop")
	err = s.Scan(context.Background(), "experiments", nil, func(record.Record) error { return stop })
	assert.True(t, errors.Is(err, stop))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Scan(ctx, "experiments", nil, func(record.Record) error { return nil })
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSchemaAndOpen(t *testing.T) {
	schema, err := Schema("literature")
	require.NoError(t, err)
	assert.Equal(t, "hep.json", schema)

	schema, err = Schema("hepnames")
	require.NoError(t, err)
	assert.Equal(t, "authors.json", schema)

	s, err := Open(context.Background(), KindJSONLines, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &JSONLines{}, s)

	_, err = Open(context.Background(), "elasticsearch", "")
	assert.Error(t, err)
}

func TestPostgres_Scan(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPostgres(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	err = s.Scan(ctx, "institutions", []string{"control_number"}, func(r record.Record) error {
		assert.NotEmpty(t, r.ControlNumber())
		return nil
	})
	require.NoError(t, err)
}
