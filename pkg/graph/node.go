package graph

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"
)

// Properties maps attribute names to scalar values (string, bool, int64,
// float64). A nil value means "known key, no value".
type Properties map[string]any

// Clone returns a shallow copy of the properties.
func (p Properties) Clone() Properties {
	clone := make(Properties, len(p))
	for k, v := range p {
		clone[k] = v
	}
	return clone
}

// Keys returns the property names in ascending order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node is a graph vertex. Its uid is write-once: it can be set exactly one
// time and must be set before the node is read, hashed or compared.
type Node struct {
	kind       Kind
	uid        string
	hasUID     bool
	labels     map[string]struct{}
	Properties Properties
}

// NewCentral creates a node of the given kind without a uid. Builders create
// the central node of a record this way; the identity processor sets the uid.
func NewCentral(kind Kind) *Node {
	n := &Node{
		kind:       kind,
		labels:     make(map[string]struct{}),
		Properties: make(Properties),
	}
	for _, l := range kind.DefaultLabels() {
		n.labels[l] = struct{}{}
	}
	return n
}

func newNode(kind Kind, uid string, props Properties) *Node {
	n := NewCentral(kind)
	for k, v := range props {
		n.Properties[k] = v
	}
	n.uid = uid
	n.hasUID = true
	return n
}

// NewRecordNode creates a reference to a record-backed node.
func NewRecordNode(kind Kind, recid string) *Node {
	return newNode(kind, RecordUID(recid), nil)
}

// NewAuthor creates the composite node for a person writing under a given set
// of affiliations.
func NewAuthor(personRecid string, affiliations []string) *Node {
	return newNode(KindAuthor, AuthorUID(personRecid, affiliations), nil)
}

// NewCurrentJobPosition creates an ongoing position at an institution.
func NewCurrentJobPosition(rank, institutionRecid, startDate string) *Node {
	return newNode(KindCurrentJobPosition,
		CurrentJobPositionUID(rank, institutionRecid, startDate),
		Properties{"start_date": startDate})
}

// NewPreviousJobPosition creates a finished position at an institution.
func NewPreviousJobPosition(rank, institutionRecid, startDate, endDate string) *Node {
	return newNode(KindPreviousJobPosition,
		PreviousJobPositionUID(rank, institutionRecid, startDate, endDate),
		Properties{"start_date": startDate, "end_date": endDate})
}

func NewCountry(code string) *Node {
	return newNode(KindCountry, NamedUID(KindCountry, code), Properties{"country_code": code})
}

func NewResearchField(name string) *Node {
	return newNode(KindResearchField, NamedUID(KindResearchField, name), Properties{"name": name})
}

func NewScientificRank(name string) *Node {
	return newNode(KindScientificRank, NamedUID(KindScientificRank, name), Properties{"name": name})
}

func NewPublisher(name string) *Node {
	return newNode(KindPublisher, NamedUID(KindPublisher, name), Properties{"name": name})
}

func NewConferenceSeries(name string) *Node {
	return newNode(KindConferenceSeries, NamedUID(KindConferenceSeries, name), Properties{"name": name})
}

// Kind returns the node category.
func (n *Node) Kind() Kind {
	return n.kind
}

// UID returns the node identity or ErrMissingUID if it was never set.
func (n *Node) UID() (string, error) {
	if !n.hasUID {
		return "", newError("uid", n.kind, "", ErrMissingUID)
	}
	return n.uid, nil
}

// HasUID reports whether the uid has been set.
func (n *Node) HasUID() bool {
	return n.hasUID
}

// SetUID binds the node identity. A second call fails with ErrUIDAlreadySet.
func (n *Node) SetUID(uid string) error {
	if n.hasUID {
		return newError("set uid", n.kind, n.uid, ErrUIDAlreadySet)
	}
	n.uid = uid
	n.hasUID = true
	return nil
}

// AddLabel adds a run-time label on top of the kind's defaults.
func (n *Node) AddLabel(label string) {
	n.labels[label] = struct{}{}
}

// RemoveLabel removes a label if present.
func (n *Node) RemoveLabel(label string) {
	delete(n.labels, label)
}

// HasLabel checks if node has a specific label
func (n *Node) HasLabel(label string) bool {
	_, ok := n.labels[label]
	return ok
}

// Labels returns the label set in ascending order.
func (n *Node) Labels() []string {
	labels := make([]string, 0, len(n.labels))
	for l := range n.labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Hash is derived from the uid alone.
func (n *Node) Hash() (uint64, error) {
	uid, err := n.UID()
	if err != nil {
		return 0, newError("hash", n.kind, "", ErrMissingUID)
	}
	h := fnv.New64a()
	h.Write([]byte(uid))
	return h.Sum64(), nil
}

// Equal reports whether both nodes have the same uid, labels and properties.
func (n *Node) Equal(other *Node) (bool, error) {
	a, err := n.UID()
	if err != nil {
		return false, err
	}
	b, err := other.UID()
	if err != nil {
		return false, err
	}
	if a != b {
		return false, nil
	}
	return reflect.DeepEqual(n.labels, other.labels) &&
		propertiesEqual(n.Properties, other.Properties), nil
}

func propertiesEqual(a, b Properties) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !reflect.DeepEqual(va, vb) {
			return false
		}
	}
	return true
}

// String renders the node for logs.
func (n *Node) String() string {
	parts := []string{strings.Join(n.Labels(), ":"), fmt.Sprint(map[string]any(n.Properties))}
	if n.hasUID {
		parts = append(parts, fmt.Sprintf("%q", n.uid))
	}
	return "Node(" + strings.Join(parts, ", ") + ")"
}
