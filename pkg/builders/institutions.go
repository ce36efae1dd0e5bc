package builders

import (
	"strings"

	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func registerInstitutions() {
	institutions.Register("related_institute", "related_institutes", []string{"recid", "relation_type"}, relatedInstitute)
}

// relatedInstitute maps the relation_type of a related institution onto a
// directed relation. A successor points at this institution, so it is the
// only incoming one.
func relatedInstitute(m *graph.GraphModel, elem any) error {
	other := graph.NewRecordNode(graph.KindInstitution, record.String(elem, "recid"))

	switch strings.ToLower(record.String(elem, "relation_type")) {
	case "parent":
		m.AddOutgoing(graph.ChildOf, other, nil)
	case "predecessor":
		m.AddOutgoing(graph.SuccessorOf, other, nil)
	case "successor":
		m.AddIncoming(graph.SuccessorOf, other, nil)
	case "other":
		m.AddOutgoing(graph.RelatedWith, other, nil)
	}
	return nil
}
