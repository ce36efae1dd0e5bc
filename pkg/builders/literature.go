package builders

import (
	"strings"

	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/record"
)

// CollectionLabels maps a primary collection onto the label it adds to a
// literature node.
var CollectionLabels = map[string]string{
	"PUBLISHED":       "Published",
	"ARXIV":           "ArXiv",
	"CONFERENCEPAPER": "ConferencePaper",
	"THESIS":          "Thesis",
	"REVIEW":          "Review",
	"LECTURES":        "Lectures",
	"NOTE":            "Note",
	"PROCEEDINGS":     "Proceedings",
	"INTRODUCTORY":    "Introductory",
	"BOOK":            "Book",
	"BOOKCHAPTER":     "BookChapter",
	"REPORT":          "Report",
}

func registerLiterature() {
	literature.Register("paper_type", "collections", []string{"primary"}, paperType)
	literature.Register("refers_to", "references", []string{"recid"}, refersTo)
	literature.Register("contributed_to", "publication_info", []string{"conference_record"}, contributedTo)
	literature.Register("authored_by", "authors", []string{"recid"}, authoredBy)
}

func paperType(m *graph.GraphModel, elem any) error {
	if label, ok := CollectionLabels[strings.ToUpper(record.String(elem, "primary"))]; ok {
		m.AddLabel(label)
	}
	return nil
}

func refersTo(m *graph.GraphModel, elem any) error {
	m.AddOutgoing(graph.RefersTo,
		graph.NewRecordNode(graph.KindLiterature, record.String(elem, "recid")), nil)
	return nil
}

func contributedTo(m *graph.GraphModel, elem any) error {
	conference := recordRef(elem, "conference_record")
	if conference == "" {
		return nil
	}
	m.AddOutgoing(graph.ContributedTo, graph.NewRecordNode(graph.KindConference, conference), nil)
	return nil
}

// authoredBy adds both the affiliation-specific author and the person behind
// it.
func authoredBy(m *graph.GraphModel, elem any) error {
	person := record.String(elem, "recid")

	var affiliations []string
	if list, ok := record.Map(elem)["affiliations"].([]any); ok {
		for _, aff := range list {
			if id := record.String(aff, "recid"); id != "" {
				affiliations = append(affiliations, id)
			}
		}
	}

	m.AddOutgoing(graph.AuthoredBy, graph.NewAuthor(person, affiliations), nil)
	m.AddOutgoing(graph.WrittenBy, graph.NewRecordNode(graph.KindPerson, person), nil)
	return nil
}
