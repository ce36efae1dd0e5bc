package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-relations/pkg/consolidate"
	"github.com/dd0wney/cluso-relations/pkg/export"
	"github.com/dd0wney/cluso-relations/pkg/graph"
)

type fakeResult struct {
	neo4j.ResultWithContext
	err error
}

func (r fakeResult) Consume(context.Context) (neo4j.ResultSummary, error) {
	return nil, r.err
}

// recorder records statements; failAt makes the n-th call fail.
type recorder struct {
	statements []string
	failAt     int
	consumeErr error
}

var _ Runner = neo4j.SessionWithContext(nil)

func (r *recorder) Run(_ context.Context, stmt string, _ map[string]any, _ ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error) {
	r.statements = append(r.statements, stmt)
	if len(r.statements) == r.failAt {
		return nil, errors.New("Neo.ClientError.Statement.SyntaxError")
	}
	return fakeResult{err: r.consumeErr}, nil
}

func TestExecute(t *testing.T) {
	r := &recorder{}
	n, err := Execute(context.Background(), r, []string{"CREATE (n)", "CREATE (m)"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"CREATE (n)", "CREATE (m)"}, r.statements)
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	r := &recorder{failAt: 2}
	n, err := Execute(context.Background(), r, []string{"A", "B\nMATCH (x)", "C"})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, r.statements, 2, "C never runs")

	var stmtErr *StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, 1, stmtErr.Index)
	assert.Contains(t, err.Error(), "statement 2 (B)")
}

func TestExecute_ConsumeError(t *testing.T) {
	boom := errors.New("transaction terminated")
	r := &recorder{consumeErr: boom}
	_, err := Execute(context.Background(), r, []string{"A"})
	assert.True(t, errors.Is(err, boom))
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &recorder{}
	n, err := Execute(ctx, r, []string{"A"})
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, r.statements)
}

func TestScriptPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, export.ScriptName), scriptPath(dir), "no manifest")

	s := consolidate.NewSession(nil)
	m := graph.NewGraphModelOfKind(graph.KindInstitution)
	require.NoError(t, m.SetUID(graph.RecordUID("1")))
	require.NoError(t, s.Add(m))
	e := export.NewExporter(filepath.Join(dir, "nodes"), filepath.Join(dir, "relations"))
	_, _, err := e.Export(s)
	require.NoError(t, err)

	path := scriptPath(e.NodesDir)
	assert.Equal(t, filepath.Join(e.NodesDir, export.ScriptName), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNew_RequiresURI(t *testing.T) {
	_, err := New(context.Background(), Options{}, nil)
	assert.Error(t, err)
}

// TestLoad_Integration needs a reachable Neo4j whose import directory is the
// export directory, e.g. NEO4J_URI=bolt://localhost:7687.
func TestLoad_Integration(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	importDir := os.Getenv("NEO4J_IMPORT_DIR")
	if uri == "" || importDir == "" {
		t.Skip("NEO4J_URI and NEO4J_IMPORT_DIR not set")
	}

	s := consolidate.NewSession(nil)
	m := graph.NewGraphModelOfKind(graph.KindInstitution)
	require.NoError(t, m.SetUID(graph.RecordUID("902725")))
	m.AddOutgoing(graph.LocatedIn, graph.NewCountry("CH"), nil)
	require.NoError(t, s.Add(m))

	e := export.NewExporter(filepath.Join(importDir, "nodes"), filepath.Join(importDir, "relations"))
	_, _, err := e.Export(s)
	require.NoError(t, err)

	ctx := context.Background()
	c, err := New(ctx, Options{
		URI:      uri,
		User:     os.Getenv("NEO4J_USER"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: os.Getenv("NEO4J_DATABASE"),
	}, nil)
	require.NoError(t, err)
	defer c.Close(ctx)

	require.NoError(t, c.Load(ctx, e.NodesDir, e.RelationsDir))
}
