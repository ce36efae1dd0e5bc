package graph

// GraphModel is the local neighborhood of one record: the central node and
// the relations anchored at it.
//
// Every relation in Outgoing starts at Central and every relation in Incoming
// ends at Central; the Add methods are the only way the model creates them.
type GraphModel struct {
	Central  *Node
	Outgoing []*Relation
	Incoming []*Relation
}

// NewGraphModel creates a model around an existing node.
func NewGraphModel(central *Node) *GraphModel {
	return &GraphModel{Central: central}
}

// NewGraphModelOfKind creates a model around a fresh, uid-less node.
func NewGraphModelOfKind(kind Kind) *GraphModel {
	return NewGraphModel(NewCentral(kind))
}

// AddOutgoing appends Central -[typ]-> end.
func (m *GraphModel) AddOutgoing(typ RelationType, end *Node, props Properties) {
	m.Outgoing = append(m.Outgoing, NewRelation(typ, m.Central, end, props))
}

// AddIncoming appends start -[typ]-> Central.
func (m *GraphModel) AddIncoming(typ RelationType, start *Node, props Properties) {
	m.Incoming = append(m.Incoming, NewRelation(typ, start, m.Central, props))
}

func (m *GraphModel) AddLabel(label string) {
	m.Central.AddLabel(label)
}

func (m *GraphModel) RemoveLabel(label string) {
	m.Central.RemoveLabel(label)
}

func (m *GraphModel) SetProperty(name string, value any) {
	m.Central.Properties[name] = value
}

func (m *GraphModel) RemoveProperty(name string) {
	delete(m.Central.Properties, name)
}

// SetUID binds the central node identity.
func (m *GraphModel) SetUID(uid string) error {
	return m.Central.SetUID(uid)
}

// Equal compares the central nodes and the outgoing and incoming relation
// sets (order-insensitive, duplicates collapsed).
func (m *GraphModel) Equal(other *GraphModel) (bool, error) {
	same, err := m.Central.Equal(other.Central)
	if err != nil || !same {
		return false, err
	}
	if same, err = relationSetsEqual(m.Outgoing, other.Outgoing); err != nil || !same {
		return false, err
	}
	return relationSetsEqual(m.Incoming, other.Incoming)
}

func relationSetsEqual(a, b []*Relation) (bool, error) {
	index := func(rs []*Relation) (map[uint64][]*Relation, error) {
		out := make(map[uint64][]*Relation, len(rs))
		for _, r := range rs {
			h, err := r.Hash()
			if err != nil {
				return nil, err
			}
			out[h] = append(out[h], r)
		}
		return out, nil
	}
	contains := func(set map[uint64][]*Relation, rs []*Relation) (bool, error) {
		for _, r := range rs {
			h, err := r.Hash()
			if err != nil {
				return false, err
			}
			found := false
			for _, candidate := range set[h] {
				eq, err := r.Equal(candidate)
				if err != nil {
					return false, err
				}
				if eq {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	}

	ia, err := index(a)
	if err != nil {
		return false, err
	}
	ib, err := index(b)
	if err != nil {
		return false, err
	}
	if ok, err := contains(ib, a); err != nil || !ok {
		return false, err
	}
	return contains(ia, b)
}
