package graph

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// RelationType is the type of a directed edge.
type RelationType string

const (
	AffiliatedWith    RelationType = "AFFILIATED_WITH"
	At                RelationType = "AT"
	AuthoredBy        RelationType = "AUTHORED_BY"
	ChildOf           RelationType = "CHILD_OF"
	ContributedTo     RelationType = "CONTRIBUTED_TO"
	HiredAs           RelationType = "HIRED_AS"
	InTheFieldOf      RelationType = "IN_THE_FIELD_OF"
	InTheRankOf       RelationType = "IN_THE_RANK_OF"
	IsAboutExperiment RelationType = "IS_ABOUT_EXPERIMENT"
	IsPartOfSeries    RelationType = "IS_PART_OF_SERIES"
	LocatedIn         RelationType = "LOCATED_IN"
	OfferedBy         RelationType = "OFFERED_BY"
	PublishedBy       RelationType = "PUBLISHED_BY"
	RefersTo          RelationType = "REFERS_TO"
	RelatedWith       RelationType = "RELATED_WITH"
	Represents        RelationType = "REPRESENTS"
	SuccessorOf       RelationType = "SUCCESSOR_OF"
	SupervisedBy      RelationType = "SUPERVISED_BY"
	WrittenBy         RelationType = "WRITTEN_BY"
)

// Relation is a directed, typed edge. Start and End are shared references
// into the model forest; the relation does not own them.
type Relation struct {
	Type       RelationType
	Start      *Node
	End        *Node
	Properties Properties
}

// NewRelation creates a relation with an empty property map when props is nil.
func NewRelation(typ RelationType, start, end *Node, props Properties) *Relation {
	if props == nil {
		props = make(Properties)
	}
	return &Relation{Type: typ, Start: start, End: end, Properties: props}
}

// endpoints resolves both endpoint uids or fails with ErrCannotCompare.
func (r *Relation) endpoints() (string, string, error) {
	start, err := r.Start.UID()
	if err != nil {
		return "", "", newError("compare", r.Start.Kind(), "", ErrCannotCompare)
	}
	end, err := r.End.UID()
	if err != nil {
		return "", "", newError("compare", r.End.Kind(), "", ErrCannotCompare)
	}
	return start, end, nil
}

// Hash combines both endpoint uids, the type and the properties.
func (r *Relation) Hash() (uint64, error) {
	start, end, err := r.endpoints()
	if err != nil {
		return 0, err
	}
	// json.Marshal sorts map keys, so equal property maps encode identically.
	props, err := json.Marshal(map[string]any(r.Properties))
	if err != nil {
		return 0, fmt.Errorf("hash relation %s: %w", r.Type, err)
	}
	h := fnv.New64a()
	for _, part := range [][]byte{[]byte(start), []byte(r.Type), []byte(end), props} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return h.Sum64(), nil
}

// Equal reports whether both relations have the same type, endpoint uids and
// properties.
func (r *Relation) Equal(other *Relation) (bool, error) {
	aStart, aEnd, err := r.endpoints()
	if err != nil {
		return false, err
	}
	bStart, bEnd, err := other.endpoints()
	if err != nil {
		return false, err
	}
	return r.Type == other.Type &&
		aStart == bStart &&
		aEnd == bEnd &&
		propertiesEqual(r.Properties, other.Properties), nil
}

func (r *Relation) String() string {
	start, end, err := r.endpoints()
	if err != nil {
		return fmt.Sprintf("(%s) - [:%s] -> (%s)", r.Start.Kind(), r.Type, r.End.Kind())
	}
	return fmt.Sprintf("(%s) - [:%s] -> (%s)", start, r.Type, end)
}
