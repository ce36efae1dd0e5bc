package consolidate

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-relations/pkg/graph"
)

var propertyNames = []string{"recid", "acronym", "title", "year"}

// models builds one institution model per entry; each mask selects which
// optional properties the central node carries.
func models(masks []uint8) []*graph.GraphModel {
	out := make([]*graph.GraphModel, 0, len(masks))
	for i, mask := range masks {
		m := graph.NewGraphModelOfKind(graph.KindInstitution)
		_ = m.SetUID(graph.RecordUID(fmt.Sprint(i)))
		for bit, name := range propertyNames {
			if mask&(1<<bit) != 0 {
				m.SetProperty(name, fmt.Sprint(i))
			}
		}
		if mask&0x10 != 0 {
			m.AddLabel("Archived")
		}
		m.AddOutgoing(graph.LocatedIn, graph.NewCountry(fmt.Sprint(mask%3)), nil)
		out = append(out, m)
	}
	return out
}

// TestPartitionInvariants checks that shape groups partition the collected
// nodes exactly by label set and property-key set.
func TestPartitionInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("nodes in a group share labels and keys", prop.ForAll(
		func(masks []uint8) bool {
			s := NewSession(nil)
			for _, m := range models(masks) {
				if err := s.Add(m); err != nil {
					return false
				}
			}
			for _, g := range s.NodeGroups() {
				for _, n := range g.Nodes {
					if !reflect.DeepEqual(n.Labels(), g.Labels) || !reflect.DeepEqual(n.Properties.Keys(), g.Keys) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8Range(0, 31)),
	))

	properties.Property("groups are pairwise distinct shapes", prop.ForAll(
		func(masks []uint8) bool {
			s := NewSession(nil)
			for _, m := range models(masks) {
				_ = s.Add(m)
			}
			seen := map[string]bool{}
			for _, g := range s.NodeGroups() {
				if seen[g.Shape()] {
					return false
				}
				seen[g.Shape()] = true
			}
			return true
		},
		gen.SliceOf(gen.UInt8Range(0, 31)),
	))

	properties.Property("every collected node is in exactly one group", prop.ForAll(
		func(masks []uint8) bool {
			s := NewSession(nil)
			for _, m := range models(masks) {
				_ = s.Add(m)
			}
			count := 0
			for _, g := range s.NodeGroups() {
				count += len(g.Nodes)
			}
			return count == len(s.ExistingUIDs()) && count == s.Stats().Nodes
		},
		gen.SliceOf(gen.UInt8Range(0, 31)),
	))

	properties.Property("every relation endpoint of an expanded model is collected", prop.ForAll(
		func(masks []uint8) bool {
			s := NewSession(nil)
			for _, m := range models(masks) {
				_ = s.Add(m)
			}
			for _, g := range s.RelationGroups() {
				for _, r := range g.Relations {
					start, _ := r.Start.UID()
					end, _ := r.End.UID()
					if !s.Has(start) || !s.Has(end) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8Range(0, 31)),
	))

	properties.TestingRun(t)
}
