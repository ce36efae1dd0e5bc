package graph

import "strings"

// Expand produces the model rooted at n. Composite kinds rebuild their
// relations from the components encoded in the uid; every other kind yields a
// bare model so that the node itself gets collected.
func Expand(n *Node) (*GraphModel, error) {
	uid, err := n.UID()
	if err != nil {
		return nil, newError("expand", n.Kind(), "", ErrMissingUID)
	}

	model := NewGraphModel(n)

	switch n.Kind() {
	case KindAuthor:
		fields, err := splitUID(KindAuthor, uid, 3)
		if err != nil {
			return nil, err
		}
		model.AddOutgoing(Represents, NewRecordNode(KindPerson, fields[1]), nil)
		if fields[2] != "" {
			for _, recid := range strings.Split(fields[2], UIDListSeparator) {
				model.AddOutgoing(AffiliatedWith, NewRecordNode(KindInstitution, recid), nil)
			}
		}

	case KindCurrentJobPosition, KindPreviousJobPosition:
		parts := 4
		if n.Kind() == KindPreviousJobPosition {
			parts = 5
		}
		fields, err := splitUID(n.Kind(), uid, parts)
		if err != nil {
			return nil, err
		}
		if rank := fields[1]; rank != "" {
			model.AddOutgoing(InTheRankOf, NewScientificRank(rank), nil)
		}
		model.AddOutgoing(At, NewRecordNode(KindInstitution, fields[2]), nil)
	}

	return model, nil
}
