// Package export writes a consolidated graph as schema-partitioned CSV files
// and the Cypher scripts that load them.
package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-relations/pkg/consolidate"
	"github.com/dd0wney/cluso-relations/pkg/cypher"
	"github.com/dd0wney/cluso-relations/pkg/logging"
	"github.com/dd0wney/cluso-relations/pkg/validation"
)

func randomName() string {
	return uuid.New().String() + ".csv"
}

// Export writes nodes, then relations.
func (e *Exporter) Export(s *consolidate.Session) (nodes, relations *Manifest, err error) {
	if nodes, err = e.WriteNodes(s); err != nil {
		return nil, nil, err
	}
	if relations, err = e.WriteRelations(s); err != nil {
		return nodes, nil, err
	}
	return nodes, relations, nil
}

// WriteNodes writes one CSV file per node group and the node loader script.
func (e *Exporter) WriteNodes(s *consolidate.Session) (*Manifest, error) {
	groups := s.NodeGroups()

	return e.writeDir(e.NodesDir, "nodes", func(script *bufio.Writer, m *Manifest) error {
		if e.UIDIndexes {
			for _, label := range distinctLabels(groups) {
				if _, err := script.WriteString(cypher.UIDIndex(label)); err != nil {
					return err
				}
			}
		}

		for _, g := range groups {
			if err := checkNodeGroup(g); err != nil {
				return err
			}
			path := filepath.Join(e.NodesDir, e.name())
			rows, sum, err := writeNodeFile(path, g)
			if err != nil {
				return err
			}
			columns := append([]string{cypher.UIDProperty}, g.Keys...)
			cmd := cypher.NodeLoad{
				File:      absPath(path),
				Labels:    g.Labels,
				Columns:   cypher.IdentityColumns(columns...),
				BatchSize: e.BatchSize,
			}
			if _, err := script.WriteString(cmd.String()); err != nil {
				return err
			}
			m.add(FileEntry{Name: filepath.Base(path), Shape: g.Shape(), Rows: rows, Checksum: sum})
			e.logger().Debug("node batch written",
				logging.Shape(g.Shape()), logging.Path(path), logging.Count(rows))
		}
		return nil
	})
}

// WriteRelations writes one CSV file per relation group and the relation
// loader script. Relations with an endpoint that was never collected as a
// node are dropped; a group left empty gets no file.
func (e *Exporter) WriteRelations(s *consolidate.Session) (*Manifest, error) {
	return e.writeDir(e.RelationsDir, "relations", func(script *bufio.Writer, m *Manifest) error {
		for _, g := range s.RelationGroups() {
			if err := validation.ValidateIdentifier("relation type", string(g.Shape.Type)); err != nil {
				return err
			}
			kept, dropped, err := resolvable(s, g)
			if err != nil {
				return err
			}
			if len(kept) == 0 {
				m.Dropped += dropped
				e.logger().Debug("relation batch empty",
					logging.Shape(g.Shape.String()), logging.Int("dropped", dropped))
				continue
			}

			path := filepath.Join(e.RelationsDir, e.name())
			sum, err := writeRelationFile(path, kept)
			if err != nil {
				return err
			}
			cmd := cypher.RelationLoad{
				File:        absPath(path),
				Type:        string(g.Shape.Type),
				StartLabels: g.Shape.Start.DefaultLabels(),
				EndLabels:   g.Shape.End.DefaultLabels(),
				BatchSize:   e.BatchSize,
			}
			if _, err := script.WriteString(cmd.String()); err != nil {
				return err
			}
			m.add(FileEntry{
				Name:     filepath.Base(path),
				Shape:    g.Shape.String(),
				Rows:     len(kept),
				Dropped:  dropped,
				Checksum: sum,
			})
			e.logger().Debug("relation batch written",
				logging.Shape(g.Shape.String()), logging.Path(path),
				logging.Count(len(kept)), logging.Int("dropped", dropped))
		}
		return nil
	})
}

// writeDir creates dir, runs fill against its loader script and finally
// writes the manifest.
func (e *Exporter) writeDir(dir, kind string, fill func(*bufio.Writer, *Manifest) error) (m *Manifest, retErr error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	scriptPath := filepath.Join(dir, ScriptName)
	file, err := os.Create(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s loader script: %w", kind, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close %s loader script: %w", kind, closeErr)
		}
	}()

	script := bufio.NewWriter(file)
	m = &Manifest{Kind: kind, Script: ScriptName, Files: make([]FileEntry, 0)}
	if err := fill(script, m); err != nil {
		return nil, fmt.Errorf("export %s: %w", kind, err)
	}
	if err := script.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush %s loader script: %w", kind, err)
	}
	if err := writeManifest(filepath.Join(dir, ManifestName), m); err != nil {
		return nil, err
	}

	e.logger().Info("export directory written",
		logging.String("kind", kind), logging.Path(dir),
		logging.Int("files", len(m.Files)), logging.Int("rows", m.Rows),
		logging.Int("dropped", m.Dropped))
	return m, nil
}

func (e *Exporter) name() string {
	if e.FileNamer == nil {
		return randomName()
	}
	return e.FileNamer()
}

func (e *Exporter) logger() logging.Logger {
	if e.Logger == nil {
		return logging.NewNopLogger()
	}
	return e.Logger
}

func distinctLabels(groups []*consolidate.NodeGroup) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, g := range groups {
		for _, l := range g.Labels {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				labels = append(labels, l)
			}
		}
	}
	sort.Strings(labels)
	return labels
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// checkNodeGroup rejects labels and property keys that cannot be used as
// plain identifiers in a loader script or a CSV header.
func checkNodeGroup(g *consolidate.NodeGroup) error {
	for _, label := range g.Labels {
		if err := validation.ValidateIdentifier("label", label); err != nil {
			return fmt.Errorf("node group %s: %w", g.Shape(), err)
		}
	}
	for _, key := range g.Keys {
		if err := validation.ValidateIdentifier("property key", key); err != nil {
			return fmt.Errorf("node group %s: %w", g.Shape(), err)
		}
	}
	return nil
}
