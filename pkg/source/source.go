// Package source reads INSPIRE records by category from a document store.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-relations/pkg/record"
)

// Source kinds
const (
	KindJSONLines = "jsonl"
	KindPostgres  = "postgres"
)

// ErrUnknownCategory is returned when a source has nothing to offer for a
// category.
var ErrUnknownCategory = errors.New("unknown record category")

// Source streams the records of one category, projected to fields. Scan
// stops at the first error returned by fn and returns it.
type Source interface {
	Scan(ctx context.Context, category string, fields []string, fn func(record.Record) error) error
	Close() error
}

// schemas maps a category onto the JSON schema its records declare.
var schemas = map[string]string{
	"conferences":  "conferences.json",
	"experiments":  "experiments.json",
	"hepnames":     "authors.json",
	"institutions": "institutions.json",
	"jobs":         "jobs.json",
	"journals":     "journals.json",
	"literature":   "hep.json",
}

// Schema returns the schema file name of a category.
func Schema(category string) (string, error) {
	s, ok := schemas[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return s, nil
}

// Open creates a source of the given kind. location is a directory for
// jsonl and a connection URL for postgres.
func Open(ctx context.Context, kind, location string) (Source, error) {
	switch kind {
	case KindJSONLines, "":
		return NewJSONLines(location)
	case KindPostgres:
		return NewPostgres(ctx, location)
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", kind)
	}
}
