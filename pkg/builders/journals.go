package builders

import (
	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func registerJournals() {
	journals.Register("published_by", "publisher", nil, publishedBy)
}

func publishedBy(m *graph.GraphModel, elem any) error {
	name := record.Scalar(elem)
	if name == "" {
		return nil
	}
	m.AddOutgoing(graph.PublishedBy, graph.NewPublisher(name), nil)
	return nil
}
