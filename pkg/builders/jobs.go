package builders

import (
	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func registerJobs() {
	jobs.Register("offered_by", "institution", []string{"recid"}, offeredBy)
	jobs.Register("is_about_experiment", "experiments", []string{"recid"}, isAboutExperiment)
	jobs.Register("in_the_rank_of", "ranks", nil, inTheRankOf)
}

func offeredBy(m *graph.GraphModel, elem any) error {
	m.AddOutgoing(graph.OfferedBy,
		graph.NewRecordNode(graph.KindInstitution, record.String(elem, "recid")), nil)
	return nil
}

func isAboutExperiment(m *graph.GraphModel, elem any) error {
	m.AddOutgoing(graph.IsAboutExperiment,
		graph.NewRecordNode(graph.KindExperiment, record.String(elem, "recid")), nil)
	return nil
}

// inTheRankOf reads ranks, a plain list of rank names.
func inTheRankOf(m *graph.GraphModel, elem any) error {
	rank := record.Scalar(elem)
	if rank == "" {
		return nil
	}
	m.AddOutgoing(graph.InTheRankOf, graph.NewScientificRank(rank), nil)
	return nil
}
