package export

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-relations/pkg/consolidate"
	"github.com/dd0wney/cluso-relations/pkg/cypher"
	"github.com/dd0wney/cluso-relations/pkg/graph"
)

// createFile opens path and hands it to write; close errors are reported
// unless write already failed. It returns the BLAKE2b-256 digest of what was
// written, hex encoded.
func createFile(path string, write func(io.Writer) error) (sum string, retErr error) {
	digest, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	if err := write(io.MultiWriter(file, digest)); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// writeCSV writes header and rows, flushing before returning.
func writeCSV(w io.Writer, header []string, rows func(*csv.Writer) error) (retErr error) {
	csvWriter := csv.NewWriter(w)
	defer func() {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return rows(csvWriter)
}

func writeNodeFile(path string, g *consolidate.NodeGroup) (int, string, error) {
	header := append([]string{cypher.UIDProperty}, g.Keys...)
	rows := 0
	sum, err := createFile(path, func(w io.Writer) error {
		return writeCSV(w, header, func(cw *csv.Writer) error {
			row := make([]string, len(header))
			for _, n := range g.Nodes {
				uid, err := n.UID()
				if err != nil {
					return err
				}
				row[0] = uid
				for i, k := range g.Keys {
					row[i+1] = cell(n.Properties[k])
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
				rows++
			}
			return nil
		})
	})
	return rows, sum, err
}

func writeRelationFile(path string, rels []*graph.Relation) (string, error) {
	header := []string{cypher.StartColumn, cypher.EndColumn}
	return createFile(path, func(w io.Writer) error {
		return writeCSV(w, header, func(cw *csv.Writer) error {
			for _, r := range rels {
				start, err := r.Start.UID()
				if err != nil {
					return err
				}
				end, err := r.End.UID()
				if err != nil {
					return err
				}
				if err := cw.Write([]string{start, end}); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
			return nil
		})
	})
}

// resolvable splits a relation group into relations whose endpoints were
// both collected and the number dropped.
func resolvable(s *consolidate.Session, g *consolidate.RelationGroup) ([]*graph.Relation, int, error) {
	kept := make([]*graph.Relation, 0, len(g.Relations))
	for _, r := range g.Relations {
		start, err := r.Start.UID()
		if err != nil {
			return nil, 0, err
		}
		end, err := r.End.UID()
		if err != nil {
			return nil, 0, err
		}
		if s.Has(start) && s.Has(end) {
			kept = append(kept, r)
		}
	}
	return kept, len(g.Relations) - len(kept), nil
}

// cell renders a property value. A missing value is an empty cell.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func writeManifest(path string, m *Manifest) error {
	_, err := createFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return enc.Close()
	})
	return err
}

// ReadManifest loads a manifest written by an earlier export.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
