package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestNode_UIDIsWriteOnce(t *testing.T) {
	n := NewCentral(KindConference)

	if _, err := n.UID(); !errors.Is(err, ErrMissingUID) {
		t.Fatalf("Expected ErrMissingUID, got %v", err)
	}

	if err := n.SetUID(RecordUID("1245372")); err != nil {
		t.Fatalf("SetUID failed: %v", err)
	}

	uid, err := n.UID()
	if err != nil {
		t.Fatalf("UID failed: %v", err)
	}
	if uid != "Record|^|1245372" {
		t.Errorf("Expected Record|^|1245372, got %s", uid)
	}

	if err := n.SetUID("Record|^|1"); !errors.Is(err, ErrUIDAlreadySet) {
		t.Errorf("Expected ErrUIDAlreadySet, got %v", err)
	}

	if uid, _ = n.UID(); uid != "Record|^|1245372" {
		t.Errorf("Second SetUID overwrote the uid: %s", uid)
	}
}

func TestNode_HashRequiresUID(t *testing.T) {
	n := NewCentral(KindLiterature)
	_, err := n.Hash()
	if !errors.Is(err, ErrMissingUID) {
		t.Fatalf("Expected ErrMissingUID, got %v", err)
	}

	var gerr *GraphError
	if !errors.As(err, &gerr) {
		t.Fatalf("Expected *GraphError, got %T", err)
	}
	if gerr.Kind != KindLiterature {
		t.Errorf("Expected kind %s, got %s", KindLiterature, gerr.Kind)
	}
}

func TestNode_HashDependsOnlyOnUID(t *testing.T) {
	a := NewRecordNode(KindInstitution, "902725")
	b := NewRecordNode(KindInstitution, "902725")
	b.AddLabel("Extra")
	b.Properties["name"] = "CERN"

	ha, err := a.Hash()
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hb, err := b.Hash()
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if ha != hb {
		t.Errorf("Expected equal hashes, got %d and %d", ha, hb)
	}

	eq, err := a.Equal(b)
	if err != nil {
		t.Fatalf("Equal failed: %v", err)
	}
	if eq {
		t.Error("Nodes with different labels and properties must not be equal")
	}
}

func TestNode_Equal(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Node
		equal bool
	}{
		{"same country", NewCountry("FR"), NewCountry("FR"), true},
		{"different country", NewCountry("FR"), NewCountry("CH"), false},
		{"same uid different kind labels", NewRecordNode(KindPerson, "1"), NewRecordNode(KindInstitution, "1"), false},
		{"job position", NewPreviousJobPosition("PHD", "1", "2010", "2014"), NewPreviousJobPosition("PHD", "1", "2010", "2014"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Equal(tt.b)
			if err != nil {
				t.Fatalf("Equal failed: %v", err)
			}
			if got != tt.equal {
				t.Errorf("Expected %v, got %v", tt.equal, got)
			}
		})
	}
}

func TestNode_DefaultLabels(t *testing.T) {
	n := NewRecordNode(KindConference, "1")
	if got := n.Labels(); !reflect.DeepEqual(got, []string{"Conference", "Record"}) {
		t.Errorf("Unexpected labels %v", got)
	}

	n.AddLabel("Published")
	if !n.HasLabel("Published") {
		t.Error("Expected label Published")
	}
	n.RemoveLabel("Published")
	if n.HasLabel("Published") {
		t.Error("Label Published not removed")
	}

	// Defaults handed out by the kind are copies.
	labels := KindConference.DefaultLabels()
	labels[0] = "Mutated"
	if got := KindConference.DefaultLabels(); !reflect.DeepEqual(got, []string{LabelRecord, LabelConference}) {
		t.Errorf("Default labels mutated: %v", got)
	}
}

func TestKind_Expandable(t *testing.T) {
	for _, k := range []Kind{KindAuthor, KindCurrentJobPosition, KindPreviousJobPosition, KindCountry, KindResearchField, KindScientificRank, KindPublisher, KindConferenceSeries} {
		if !k.Expandable() || k.IsRecord() {
			t.Errorf("%s: expected expandable non-record kind", k)
		}
	}
	for _, k := range []Kind{KindRecord, KindLiterature, KindPerson, KindInstitution, KindConference, KindExperiment, KindJournal, KindJob} {
		if k.Expandable() || !k.IsRecord() {
			t.Errorf("%s: expected record kind", k)
		}
	}
	if got := Kind(200).String(); got != "Kind(200)" {
		t.Errorf("Expected Kind(200), got %s", got)
	}
}

func TestAuthorUID(t *testing.T) {
	tests := []struct {
		name   string
		person string
		affs   []string
		want   string
	}{
		{"sorted regardless of order", "A1", []string{"I2", "I1"}, "Author|^|A1|^|I1|/|I2"},
		{"numeric not lexical", "1", []string{"10", "9", "100"}, "Author|^|1|^|9|/|10|/|100"},
		{"deduplicated", "1", []string{"5", "5", "3"}, "Author|^|1|^|3|/|5"},
		{"prefixed numeric", "1", []string{"I10", "I2"}, "Author|^|1|^|I2|/|I10"},
		{"no affiliations", "7", nil, "Author|^|7|^|"},
		{"empty ids dropped", "7", []string{"", "4"}, "Author|^|7|^|4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthorUID(tt.person, tt.affs); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNamedUIDs(t *testing.T) {
	tests := []struct {
		node *Node
		want string
	}{
		{NewCountry("FR"), "Country|^|FR"},
		{NewResearchField("Computing"), "ResearchField|^|Computing"},
		{NewScientificRank("PHD"), "ScientificRank|^|PHD"},
		{NewCurrentJobPosition("SENIOR", "902725", "2015"), "CurrentJobPosition|^|SENIOR|^|902725|^|2015"},
		{NewPreviousJobPosition("PHD", "902725", "2010", "2014"), "PreviousJobPosition|^|PHD|^|902725|^|2010|^|2014"},
	}

	for _, tt := range tests {
		if tt.node.uid != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, tt.node.uid)
		}
	}
}
