package export

import (
	"github.com/dd0wney/cluso-relations/pkg/logging"
)

// Output layout
const (
	ScriptName   = "loader.cypher"
	ManifestName = "manifest.yaml"
)

// Exporter writes a consolidated session as CSV batches plus one loader
// script per directory. Nodes and relations go to separate directories so
// each can be consumed on its own.
type Exporter struct {
	NodesDir     string
	RelationsDir string

	// FileNamer returns the base name of the next CSV file. Defaults to a
	// random uuid.
	FileNamer func() string

	// BatchSize wraps every load statement in CALL {} IN TRANSACTIONS when
	// positive.
	BatchSize int

	// UIDIndexes prefixes the node script with one uid index per label.
	UIDIndexes bool

	Logger logging.Logger
}

// NewExporter creates an exporter writing below outDir/nodes and
// outDir/relations.
func NewExporter(nodesDir, relationsDir string) *Exporter {
	return &Exporter{
		NodesDir:     nodesDir,
		RelationsDir: relationsDir,
		FileNamer:    randomName,
		UIDIndexes:   true,
		Logger:       logging.NewNopLogger(),
	}
}

// FileEntry describes one written CSV batch.
type FileEntry struct {
	Name    string `yaml:"name"`
	Shape   string `yaml:"shape"`
	Rows    int    `yaml:"rows"`
	Dropped int    `yaml:"dropped,omitempty"`

	// Checksum is the hex BLAKE2b-256 digest of the file.
	Checksum string `yaml:"blake2b"`
}

// Manifest summarizes one output directory.
type Manifest struct {
	Kind    string      `yaml:"kind"`
	Script  string      `yaml:"script"`
	Files   []FileEntry `yaml:"files"`
	Rows    int         `yaml:"rows"`
	Dropped int         `yaml:"dropped"`
}

func (m *Manifest) add(f FileEntry) {
	m.Files = append(m.Files, f)
	m.Rows += f.Rows
	m.Dropped += f.Dropped
}
