// Package config loads the run configuration from a YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-relations/pkg/builders"
	"github.com/dd0wney/cluso-relations/pkg/parallel"
	"github.com/dd0wney/cluso-relations/pkg/source"
	"github.com/dd0wney/cluso-relations/pkg/validation"
)

// Default values
const (
	DefaultOutputDir     = "out"
	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jUser     = "neo4j"
	DefaultNeo4jDatabase = "neo4j"
	DefaultS3Prefix      = "inspire-relations"
)

// Config is the whole run configuration.
type Config struct {
	Source     SourceConfig `yaml:"source"`
	Output     OutputConfig `yaml:"output"`
	Categories []string     `yaml:"categories"`
	Workers    int          `yaml:"workers" validate:"min=0"`

	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFile     string `yaml:"log_file"`
	MetricsFile string `yaml:"metrics_file"`

	Neo4j Neo4jConfig `yaml:"neo4j"`
	S3    S3Config    `yaml:"s3"`
}

// SourceConfig selects where records are read from.
type SourceConfig struct {
	// Kind is "jsonl" or "postgres".
	Kind string `yaml:"kind" validate:"required,oneof=jsonl postgres"`
	// Location is a directory for jsonl and a connection string for postgres.
	Location string `yaml:"location" validate:"required"`
}

// OutputConfig controls the export.
type OutputConfig struct {
	Dir string `yaml:"dir" validate:"required"`
	// BatchSize > 0 makes the loader commit every BatchSize rows.
	BatchSize  int  `yaml:"batch_size" validate:"min=0"`
	UIDIndexes bool `yaml:"uid_indexes"`
}

// NodesDir is where node batches are written.
func (o OutputConfig) NodesDir() string {
	return filepath.Join(o.Dir, "nodes")
}

// RelationsDir is where relation batches are written.
func (o OutputConfig) RelationsDir() string {
	return filepath.Join(o.Dir, "relations")
}

// Neo4jConfig holds the connection used to run the loader scripts.
type Neo4jConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URI      string `yaml:"uri" validate:"required_if=Enabled true"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database" validate:"omitempty,dbname"`
}

// S3Config holds the bucket the run artifacts are published to.
type S3Config struct {
	Enabled  bool   `yaml:"enabled"`
	Bucket   string `yaml:"bucket" validate:"required_if=Enabled true"`
	Prefix   string `yaml:"prefix" validate:"omitempty,keyprefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	// PathStyle addresses the bucket in the path, as MinIO expects.
	PathStyle bool `yaml:"path_style"`
	// Static credentials; the default AWS chain applies when empty.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Default returns a configuration that reads ./data as JSON lines and writes
// to ./out.
func Default() *Config {
	return &Config{
		Source:     SourceConfig{Kind: source.KindJSONLines, Location: "data"},
		Output:     OutputConfig{Dir: DefaultOutputDir, UIDIndexes: true},
		Categories: builders.Categories(),
		Workers:    1,
		LogLevel:   "info",
		Neo4j: Neo4jConfig{
			URI:      DefaultNeo4jURI,
			User:     DefaultNeo4jUser,
			Database: DefaultNeo4jDatabase,
		},
		S3: S3Config{Prefix: DefaultS3Prefix},
	}
}

// Load reads path over the defaults and applies the environment. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Source.Kind = source.KindPostgres
		c.Source.Location = v
	}
	str("NEO4J_URI", &c.Neo4j.URI)
	str("NEO4J_USER", &c.Neo4j.User)
	str("NEO4J_PASSWORD", &c.Neo4j.Password)
	str("NEO4J_DATABASE", &c.Neo4j.Database)
	str("AWS_REGION", &c.S3.Region)
	str("S3_BUCKET", &c.S3.Bucket)
	str("S3_ENDPOINT", &c.S3.Endpoint)

	if v, ok := lookup("WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WORKERS %q: %w", v, err)
		}
		c.Workers = n
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}

// SetCategories replaces the category list from a comma-separated value.
func (c *Config) SetCategories(list string) {
	c.Categories = nil
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			c.Categories = append(c.Categories, name)
		}
	}
}

// Validate checks the struct tags, then the cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	return validation.NewConfigValidator("config").
		RangeInt("workers", c.Workers, 0, parallel.MaxWorkers).
		Each("categories", c.Categories, builders.Categories()).
		When(len(c.Categories) == 0, func(cv *validation.ConfigValidator) {
			cv.Custom("categories", func() error { return errors.New("no category selected") })
		}).
		When(c.Neo4j.Enabled && c.Neo4j.User != "", func(cv *validation.ConfigValidator) {
			cv.Required("neo4j.password", c.Neo4j.Password)
		}).
		Validate()
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	out := *c
	if out.Neo4j.Password != "" {
		out.Neo4j.Password = "***"
	}
	if out.S3.SecretAccessKey != "" {
		out.S3.SecretAccessKey = "***"
	}
	if out.Source.Kind == source.KindPostgres {
		out.Source.Location = redactURL(out.Source.Location)
	}
	return out
}

func redactURL(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		creds = creds[:i] + ":***"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}
