package graph

import "fmt"

// Kind identifies a node category. Every kind carries a fixed set of default
// labels and knows whether its neighborhood has to be materialized on demand.
type Kind uint8

const (
	KindRecord Kind = iota
	KindLiterature
	KindPerson
	KindInstitution
	KindConference
	KindExperiment
	KindJournal
	KindJob
	KindAuthor
	KindCurrentJobPosition
	KindPreviousJobPosition
	KindCountry
	KindResearchField
	KindScientificRank
	KindPublisher
	KindConferenceSeries
)

// Node labels
const (
	LabelRecord              = "Record"
	LabelLiterature          = "Literature"
	LabelPerson              = "Person"
	LabelInstitution         = "Institution"
	LabelConference          = "Conference"
	LabelExperiment          = "Experiment"
	LabelJournal             = "Journal"
	LabelJob                 = "Job"
	LabelAuthor              = "Author"
	LabelCurrentJobPosition  = "CurrentJobPosition"
	LabelPreviousJobPosition = "PreviousJobPosition"
	LabelCountry             = "Country"
	LabelResearchField       = "ResearchField"
	LabelScientificRank      = "ScientificRank"
	LabelPublisher           = "Publisher"
	LabelConferenceSeries    = "ConferenceSeries"
)

type kindInfo struct {
	name       string
	labels     []string
	expandable bool
}

var kinds = map[Kind]kindInfo{
	KindRecord:              {"Record", []string{LabelRecord}, false},
	KindLiterature:          {"Literature", []string{LabelRecord, LabelLiterature}, false},
	KindPerson:              {"Person", []string{LabelRecord, LabelPerson}, false},
	KindInstitution:         {"Institution", []string{LabelRecord, LabelInstitution}, false},
	KindConference:          {"Conference", []string{LabelRecord, LabelConference}, false},
	KindExperiment:          {"Experiment", []string{LabelRecord, LabelExperiment}, false},
	KindJournal:             {"Journal", []string{LabelRecord, LabelJournal}, false},
	KindJob:                 {"Job", []string{LabelRecord, LabelJob}, false},
	KindAuthor:              {"Author", []string{LabelAuthor}, true},
	KindCurrentJobPosition:  {"CurrentJobPosition", []string{LabelCurrentJobPosition}, true},
	KindPreviousJobPosition: {"PreviousJobPosition", []string{LabelPreviousJobPosition}, true},
	KindCountry:             {"Country", []string{LabelCountry}, true},
	KindResearchField:       {"ResearchField", []string{LabelResearchField}, true},
	KindScientificRank:      {"ScientificRank", []string{LabelScientificRank}, true},
	KindPublisher:           {"Publisher", []string{LabelPublisher}, true},
	KindConferenceSeries:    {"ConferenceSeries", []string{LabelConferenceSeries}, true},
}

// String returns the kind name
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// DefaultLabels returns a fresh copy of the labels every node of this kind carries.
func (k Kind) DefaultLabels() []string {
	info, ok := kinds[k]
	if !ok {
		return nil
	}
	labels := make([]string, len(info.labels))
	copy(labels, info.labels)
	return labels
}

// Expandable reports whether nodes of this kind are shallow references that
// never show up as source records. Consolidation materializes them through
// Expand; record-backed kinds are expected to arrive as records of their own.
func (k Kind) Expandable() bool {
	return kinds[k].expandable
}

// IsRecord reports whether the kind is backed by a source record.
func (k Kind) IsRecord() bool {
	info, ok := kinds[k]
	return ok && !info.expandable
}
