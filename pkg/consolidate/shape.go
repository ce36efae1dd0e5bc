package consolidate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-relations/pkg/graph"
)

const keySeparator = ","

// groupKey encodes parts as length-prefixed strings, so that no two distinct
// lists share a key whatever characters they contain.
func groupKey(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// NodeGroup holds nodes sharing one label set and one property-key set. The
// group defines the export schema of its nodes.
type NodeGroup struct {
	Labels []string
	Keys   []string
	Nodes  []*graph.Node
}

// Shape renders the group key, e.g. "Conference:Record{recid}".
func (g *NodeGroup) Shape() string {
	return strings.Join(g.Labels, ":") + "{" + strings.Join(g.Keys, keySeparator) + "}"
}

// RelationShape partitions relations by type and endpoint kinds.
type RelationShape struct {
	Type  graph.RelationType
	Start graph.Kind
	End   graph.Kind
}

func (s RelationShape) String() string {
	return fmt.Sprintf("(%s)-[%s]->(%s)", s.Start, s.Type, s.End)
}

func (s RelationShape) less(o RelationShape) bool {
	if s.Type != o.Type {
		return s.Type < o.Type
	}
	if s.Start != o.Start {
		return s.Start < o.Start
	}
	return s.End < o.End
}

// RelationGroup holds the relations of one shape in insertion order.
type RelationGroup struct {
	Shape     RelationShape
	Relations []*graph.Relation
}

func shapeOf(r *graph.Relation) RelationShape {
	return RelationShape{Type: r.Type, Start: r.Start.Kind(), End: r.End.Kind()}
}

func nodeKeys(n *graph.Node) (labels, keys []string) {
	return n.Labels(), n.Properties.Keys()
}
