// Package consolidate folds per-record graph models into shape-partitioned
// node and relation groups ready for bulk export.
package consolidate

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dd0wney/cluso-relations/pkg/graph"
	"github.com/dd0wney/cluso-relations/pkg/logging"
)

// Stats counts what a session collected and what it folded away.
type Stats struct {
	Models             int `yaml:"models"`
	Nodes              int `yaml:"nodes"`
	Relations          int `yaml:"relations"`
	Expanded           int `yaml:"expanded"`
	DuplicateNodes     int `yaml:"duplicate_nodes"`
	DuplicateRelations int `yaml:"duplicate_relations"`
}

// Session is the state of one export run: the uids of every node collected so
// far and the node and relation groups. A Session is not safe for concurrent
// use; parallel workers each own one and Merge them at the end.
type Session struct {
	existing       map[string]struct{}
	nodeGroups     map[string]map[string]*NodeGroup // labels -> property keys -> group
	relationGroups map[RelationShape]*RelationGroup
	relations      map[uint64][]*graph.Relation // hash -> relations, for dedupe
	models         []*graph.GraphModel          // accepted by Add, in order
	stats          Stats
	logger         logging.Logger
}

// NewSession creates an empty session.
func NewSession(logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Session{
		existing:       make(map[string]struct{}),
		nodeGroups:     make(map[string]map[string]*NodeGroup),
		relationGroups: make(map[RelationShape]*RelationGroup),
		relations:      make(map[uint64][]*graph.Relation),
		logger:         logger.With(logging.Component("consolidate")),
	}
}

// Add folds one model into the session. A model whose central uid was
// already collected is skipped as a whole. Shallow relation endpoints are
// expanded and folded in recursively; an endpoint whose uid is already
// collected is never expanded again.
func (s *Session) Add(m *graph.GraphModel) error {
	uid, err := m.Central.UID()
	if err != nil {
		return err
	}
	if s.Has(uid) {
		s.stats.DuplicateNodes++
		s.logger.Debug("duplicate record skipped", logging.UID(uid))
		return nil
	}
	s.stats.Models++
	s.models = append(s.models, m)
	return s.fold(m, uid)
}

func (s *Session) fold(m *graph.GraphModel, uid string) error {
	s.addNode(uid, m.Central)

	for _, r := range m.Outgoing {
		if err := s.addRelation(r); err != nil {
			return err
		}
	}
	for _, r := range m.Incoming {
		if err := s.addRelation(r); err != nil {
			return err
		}
	}

	for _, r := range m.Outgoing {
		if err := s.expand(r.End); err != nil {
			return err
		}
	}
	for _, r := range m.Incoming {
		if err := s.expand(r.Start); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) expand(n *graph.Node) error {
	if !n.Kind().Expandable() {
		return nil
	}
	uid, err := n.UID()
	if err != nil {
		return err
	}
	if s.Has(uid) {
		return nil
	}
	sub, err := graph.Expand(n)
	if err != nil {
		return err
	}
	s.stats.Expanded++
	return s.fold(sub, uid)
}

func (s *Session) addNode(uid string, n *graph.Node) {
	s.existing[uid] = struct{}{}

	labels, keys := nodeKeys(n)
	lk, pk := groupKey(labels), groupKey(keys)

	byKeys, ok := s.nodeGroups[lk]
	if !ok {
		byKeys = make(map[string]*NodeGroup)
		s.nodeGroups[lk] = byKeys
	}
	g, ok := byKeys[pk]
	if !ok {
		g = &NodeGroup{Labels: labels, Keys: keys}
		byKeys[pk] = g
	}
	g.Nodes = append(g.Nodes, n)
	s.stats.Nodes++
}

func (s *Session) addRelation(r *graph.Relation) error {
	h, err := r.Hash()
	if err != nil {
		return err
	}
	for _, seen := range s.relations[h] {
		same, err := seen.Equal(r)
		if err != nil {
			return err
		}
		if same {
			s.stats.DuplicateRelations++
			return nil
		}
	}
	s.relations[h] = append(s.relations[h], r)

	shape := shapeOf(r)
	g, ok := s.relationGroups[shape]
	if !ok {
		g = &RelationGroup{Shape: shape}
		s.relationGroups[shape] = g
	}
	g.Relations = append(g.Relations, r)
	s.stats.Relations++
	return nil
}

// Merge replays the models other accepted, in the order it accepted them,
// as if they had been added to this session. A model whose central uid this
// session already holds is skipped whole, together with its relations and
// expansions. Records other skipped as duplicates are carried into the stats.
func (s *Session) Merge(other *Session) error {
	for _, m := range other.models {
		if err := s.Add(m); err != nil {
			return fmt.Errorf("merge: %w", err)
		}
	}
	s.stats.DuplicateNodes += other.stats.DuplicateNodes
	return nil
}

// Has reports whether a node with uid has been collected.
func (s *Session) Has(uid string) bool {
	_, ok := s.existing[uid]
	return ok
}

// ExistingUIDs returns the uids of every collected node, sorted.
func (s *Session) ExistingUIDs() []string {
	uids := make([]string, 0, len(s.existing))
	for uid := range s.existing {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// NodeGroups returns the node groups ordered by label set, then property keys.
func (s *Session) NodeGroups() []*NodeGroup {
	var groups []*NodeGroup
	for _, byKeys := range s.nodeGroups {
		for _, g := range byKeys {
			groups = append(groups, g)
		}
	}
	slices.SortFunc(groups, func(a, b *NodeGroup) int {
		if c := slices.Compare(a.Labels, b.Labels); c != 0 {
			return c
		}
		return slices.Compare(a.Keys, b.Keys)
	})
	return groups
}

// RelationGroups returns the relation groups ordered by type, then endpoint kinds.
func (s *Session) RelationGroups() []*RelationGroup {
	groups := make([]*RelationGroup, 0, len(s.relationGroups))
	for _, g := range s.relationGroups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Shape.less(groups[j].Shape)
	})
	return groups
}

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	return s.stats
}
