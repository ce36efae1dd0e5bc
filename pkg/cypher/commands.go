// Package cypher renders the LOAD CSV statements that load an export into
// Neo4j, and splits generated scripts back into statements.
package cypher

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Column names of relation files.
const (
	StartColumn = "start_node_uid"
	EndColumn   = "end_node_uid"
	UIDProperty = "uid"
)

// NodeLoad creates one node per row of File. Columns maps property names to
// the CSV columns they are read from.
type NodeLoad struct {
	File      string
	Labels    []string
	Columns   []Column
	BatchSize int
}

// Column maps a node property onto a CSV column.
type Column struct {
	Property string
	Name     string
}

// IdentityColumns maps every name onto the column of the same name.
func IdentityColumns(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Property: n, Name: n}
	}
	return cols
}

// String renders the statement, terminated by a semicolon.
func (l NodeLoad) String() string {
	props := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		props[i] = Ident(c.Property) + ": row." + Ident(c.Name)
	}
	body := fmt.Sprintf("CREATE (n%s {%s})", labelList(l.Labels), strings.Join(props, ", "))
	return load(l.File, body, l.BatchSize)
}

// RelationLoad creates one relation per row of File, matching endpoints by
// uid among nodes carrying the given label sets.
type RelationLoad struct {
	File        string
	Type        string
	StartLabels []string
	EndLabels   []string
	BatchSize   int
}

func (l RelationLoad) String() string {
	body := fmt.Sprintf(
		"MATCH (s%s {%s: row.%s})\nMATCH (e%s {%s: row.%s})\nCREATE (s)-[:%s]->(e)",
		labelList(l.StartLabels), UIDProperty, StartColumn,
		labelList(l.EndLabels), UIDProperty, EndColumn,
		Ident(l.Type))
	return load(l.File, body, l.BatchSize)
}

// UIDIndex renders the index creation statement backing uid lookups on label.
func UIDIndex(label string) string {
	name := "uid_" + strings.ToLower(strings.Map(func(r rune) rune {
		if r == '`' || r == ' ' {
			return '_'
		}
		return r
	}, label))
	return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s);\n", name, Ident(label), UIDProperty)
}

func load(file, body string, batch int) string {
	head := fmt.Sprintf("LOAD CSV WITH HEADERS FROM '%s' AS row\n", FileURL(file))
	if batch > 0 {
		return fmt.Sprintf("%sCALL {\n  WITH row\n  %s\n} IN TRANSACTIONS OF %d ROWS;\n",
			head, strings.ReplaceAll(body, "\n", "\n  "), batch)
	}
	return head + body + ";\n"
}

// FileURL renders a file path as a file URL. Quotes in the path are escaped.
func FileURL(path string) string {
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.ReplaceAll("file://"+path, "'", "\\'")
}

// Ident quotes an identifier (label, relation type, property) with backticks.
func Ident(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func labelList(labels []string) string {
	var b strings.Builder
	for _, l := range labels {
		b.WriteString(":")
		b.WriteString(Ident(l))
	}
	return b.String()
}
