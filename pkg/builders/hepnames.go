package builders

import (
	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func registerHEPNames() {
	hepnames.Register("supervised_by", "advisors", []string{"record"}, supervisedBy)
	hepnames.Register("hired_as", "positions", []string{"institution"}, hiredAs)
}

func supervisedBy(m *graph.GraphModel, elem any) error {
	supervisor := recordRef(elem, "record")
	if supervisor == "" {
		return nil
	}
	var props graph.Properties
	if degree := record.String(elem, "degree_type"); degree != "" {
		props = graph.Properties{"degree_type": degree}
	}
	m.AddOutgoing(graph.SupervisedBy, graph.NewRecordNode(graph.KindPerson, supervisor), props)
	return nil
}

// hiredAs links a person to a job position. Positions at an institution that
// has no record of its own are dropped.
func hiredAs(m *graph.GraphModel, elem any) error {
	institution := record.String(record.Map(elem)["institution"], "recid")
	if institution == "" {
		return nil
	}

	rank := record.String(elem, "rank")
	start := record.String(elem, "start_date")

	var position *graph.Node
	if record.Bool(elem, "current") {
		position = graph.NewCurrentJobPosition(rank, institution, start)
	} else {
		position = graph.NewPreviousJobPosition(rank, institution, start, record.String(elem, "end_date"))
	}
	m.AddOutgoing(graph.HiredAs, position, nil)
	return nil
}
