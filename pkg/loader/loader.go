// Package loader runs exported loader scripts against a Neo4j database.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dd0wney/cluso-relations/pkg/cypher"
	"github.com/dd0wney/cluso-relations/pkg/export"
	"github.com/dd0wney/cluso-relations/pkg/logging"
)

// Default connection settings
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxPoolSize = 50
)

// Options configures the connection.
type Options struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// Runner executes one statement. neo4j.SessionWithContext satisfies it.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any, configurers ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error)
}

// Client owns the driver.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logging.Logger
}

// New opens a driver and verifies connectivity.
func New(ctx context.Context, opts Options, logger logging.Logger) (*Client, error) {
	if opts.URI == "" {
		return nil, errors.New("loader: neo4j uri required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxPoolSize <= 0 {
		opts.MaxPoolSize = DefaultMaxPoolSize
	}

	auth := neo4j.NoAuth()
	if opts.User != "" {
		auth = neo4j.BasicAuth(opts.User, opts.Password, "")
	}
	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = opts.MaxPoolSize
		cfg.SocketConnectTimeout = opts.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("loader: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("loader: verify connectivity: %w", err)
	}

	return &Client{
		driver:   driver,
		database: opts.Database,
		logger:   logger.With(logging.Component("loader")),
	}, nil
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}

// Load runs the node script, then the relation script, so that every MATCH
// of the relation script finds its endpoints.
func (c *Client) Load(ctx context.Context, nodesDir, relationsDir string) error {
	for _, dir := range []string{nodesDir, relationsDir} {
		if _, err := c.RunScript(ctx, scriptPath(dir)); err != nil {
			return err
		}
	}
	return nil
}

// RunScript executes every statement of the script at path. Statements run
// in auto-commit mode, which CALL {} IN TRANSACTIONS requires.
func (c *Client) RunScript(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("loader: read script: %w", err)
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	timer := logging.StartTimer(c.logger, "script loaded", logging.Path(path))
	n, err := Execute(ctx, session, cypher.Split(string(data)))
	if err != nil {
		timer.EndError(err)
		return n, fmt.Errorf("loader: %s: %w", filepath.Base(filepath.Dir(path)), err)
	}
	timer.End(logging.Count(n))
	return n, nil
}

// Execute runs statements in order and stops at the first failure. It
// returns the number of statements that completed.
func Execute(ctx context.Context, r Runner, statements []string) (int, error) {
	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		res, err := r.Run(ctx, stmt, nil)
		if err == nil {
			_, err = res.Consume(ctx)
		}
		if err != nil {
			return i, &StatementError{Index: i, Statement: stmt, Err: err}
		}
	}
	return len(statements), nil
}

// StatementError reports the statement a script stopped at.
type StatementError struct {
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	first, _, _ := strings.Cut(e.Statement, "\n")
	return fmt.Sprintf("statement %d (%s): %v", e.Index+1, first, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// scriptPath resolves the loader script of an export directory through its
// manifest, falling back to the default name.
func scriptPath(dir string) string {
	if m, err := export.ReadManifest(filepath.Join(dir, export.ManifestName)); err == nil && m.Script != "" {
		return filepath.Join(dir, m.Script)
	}
	return filepath.Join(dir, export.ScriptName)
}
