// Package builders declares the processor tables of every INSPIRE record
// category.
package builders

import (
	"sort"

	"github.com/dd0wney/cluso-relations/pkg/builder"
	"github.com/dd0wney/cluso-relations/pkg/graph"
)

// Record categories, named after the INSPIRE indexes they are read from.
const (
	Conferences  = "conferences"
	Experiments  = "experiments"
	HEPNames     = "hepnames"
	Institutions = "institutions"
	Jobs         = "jobs"
	Journals     = "journals"
	Literature   = "literature"
)

var (
	conferences  = builder.New(Conferences, graph.KindConference)
	experiments  = builder.New(Experiments, graph.KindExperiment)
	hepnames     = builder.New(HEPNames, graph.KindPerson)
	institutions = builder.New(Institutions, graph.KindInstitution)
	jobs         = builder.New(Jobs, graph.KindJob)
	journals     = builder.New(Journals, graph.KindJournal)
	literature   = builder.New(Literature, graph.KindLiterature)

	registries = map[string]*builder.Registry{
		Conferences:  conferences,
		Experiments:  experiments,
		HEPNames:     hepnames,
		Institutions: institutions,
		Jobs:         jobs,
		Journals:     journals,
		Literature:   literature,
	}
)

func init() {
	registerCommon()
	registerConferences()
	registerExperiments()
	registerHEPNames()
	registerInstitutions()
	registerJobs()
	registerJournals()
	registerLiterature()
}

// Registries returns the registry of every category.
func Registries() map[string]*builder.Registry {
	out := make(map[string]*builder.Registry, len(registries))
	for k, v := range registries {
		out[k] = v
	}
	return out
}

// Lookup returns the registry of one category.
func Lookup(category string) (*builder.Registry, bool) {
	r, ok := registries[category]
	return r, ok
}

// Categories returns every category name in the order they are migrated.
func Categories() []string {
	names := make([]string, 0, len(registries))
	for name := range registries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
