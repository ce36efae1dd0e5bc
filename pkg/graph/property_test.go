package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestIdentityInvariants uses property-based testing to verify the equality
// and hashing contracts of nodes and relations.
func TestIdentityInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("node equality implies equal hash", prop.ForAll(
		func(recid, name string) bool {
			a := NewRecordNode(KindInstitution, recid)
			b := NewRecordNode(KindInstitution, recid)
			a.Properties["name"] = name
			b.Properties["name"] = name

			eq, err := a.Equal(b)
			if err != nil || !eq {
				return false
			}
			ha, _ := a.Hash()
			hb, _ := b.Hash()
			return ha == hb
		},
		gen.NumString(),
		gen.AlphaString(),
	))

	properties.Property("node hash ignores labels and properties", prop.ForAll(
		func(recid, label, value string) bool {
			a := NewRecordNode(KindLiterature, recid)
			b := NewRecordNode(KindLiterature, recid)
			b.AddLabel(label)
			b.Properties["title"] = value
			ha, _ := a.Hash()
			hb, _ := b.Hash()
			return ha == hb
		},
		gen.NumString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("author uid is independent of affiliation order", prop.ForAll(
		func(person string, affs []string) bool {
			reversed := make([]string, len(affs))
			for i, a := range affs {
				reversed[len(affs)-1-i] = a
			}
			return AuthorUID(person, affs) == AuthorUID(person, reversed)
		},
		gen.NumString(),
		gen.SliceOf(gen.NumString()),
	))

	properties.Property("relation equality follows endpoint uids", prop.ForAll(
		func(a, b, c string) bool {
			r := NewRelation(RefersTo, NewRecordNode(KindLiterature, a), NewRecordNode(KindLiterature, b), nil)
			s := NewRelation(RefersTo, NewRecordNode(KindLiterature, a), NewRecordNode(KindLiterature, c), nil)
			eq, err := r.Equal(s)
			if err != nil {
				return false
			}
			return eq == (b == c)
		},
		gen.NumString(),
		gen.NumString(),
		gen.NumString(),
	))

	properties.TestingRun(t)
}
