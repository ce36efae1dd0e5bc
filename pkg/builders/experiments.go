package builders

import (
	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func registerExperiments() {
	experiments.Register("affiliated_with", "affiliations", []string{"recid"}, affiliatedWith)
}

func affiliatedWith(m *graph.GraphModel, elem any) error {
	m.AddOutgoing(graph.AffiliatedWith,
		graph.NewRecordNode(graph.KindInstitution, record.String(elem, "recid")), nil)
	return nil
}
