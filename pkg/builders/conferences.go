package builders

import (
	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func registerConferences() {
	conferences.Register("is_part_of_series", "series", []string{"name"}, isPartOfSeries)
}

func isPartOfSeries(m *graph.GraphModel, elem any) error {
	var props graph.Properties
	if n := record.String(elem, "number"); n != "" {
		props = graph.Properties{"number": n}
	}
	m.AddOutgoing(graph.IsPartOfSeries, graph.NewConferenceSeries(record.String(elem, "name")), props)
	return nil
}
