package builders

import (
	"github.com/dd0wney/cluso-relations/pkg/builder"
	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

func registerCommon() {
	builder.BindIdentity(
		[]*builder.Registry{conferences, experiments, hepnames, institutions, jobs, journals, literature},
		"control_number", recid)

	builder.Bind(
		[]*builder.Registry{conferences, institutions},
		"located_in_country", "address", []string{"country_code"}, locatedInCountry)

	builder.Bind(
		[]*builder.Registry{conferences, jobs, literature},
		"in_the_field_of", "field_categories", []string{"term"}, inTheFieldOf)
}

// recid binds the record's own identity. A record without a usable control
// number leaves the uid unset and Build reports it.
func recid(m *graph.GraphModel, elem any) error {
	id := record.Scalar(elem)
	if id == "" {
		return nil
	}
	m.SetProperty("recid", id)
	return m.SetUID(graph.RecordUID(id))
}

func locatedInCountry(m *graph.GraphModel, elem any) error {
	m.AddOutgoing(graph.LocatedIn, graph.NewCountry(record.String(elem, "country_code")), nil)
	return nil
}

func inTheFieldOf(m *graph.GraphModel, elem any) error {
	m.AddOutgoing(graph.InTheFieldOf, graph.NewResearchField(record.String(elem, "term")), nil)
	return nil
}

// recordRef reads a reference that INSPIRE writes either as a bare recid or
// as a {"$ref": url} object.
func recordRef(elem any, key string) string {
	m := record.Map(elem)
	if m == nil {
		return ""
	}
	if id := record.Scalar(m[key]); id != "" {
		return id
	}
	return record.RecidFromRef(m[key])
}
