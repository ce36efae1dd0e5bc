package graph

import (
	"sort"
	"strconv"
	"strings"
)

// UID separators. They never appear in INSPIRE record ids, ranks, dates or
// vocabulary terms.
const (
	UIDSeparator     = "|^|"
	UIDListSeparator = "|/|"
)

// RecordUID returns the uid of any record-backed node.
func RecordUID(recid string) string {
	return "Record" + UIDSeparator + recid
}

// NamedUID returns the uid of a node identified by a single name or code,
// e.g. Country|^|FR or ResearchField|^|Computing.
func NamedUID(kind Kind, name string) string {
	return kind.String() + UIDSeparator + name
}

// AuthorUID derives an author's uid from the person id and the affiliation
// ids. Affiliations are deduplicated and sorted so that input order does not
// matter.
func AuthorUID(personRecid string, affiliations []string) string {
	return KindAuthor.String() + UIDSeparator + personRecid +
		UIDSeparator + strings.Join(SortRecids(affiliations), UIDListSeparator)
}

// CurrentJobPositionUID derives the uid of an ongoing job position.
func CurrentJobPositionUID(rank, institutionRecid, startDate string) string {
	return strings.Join([]string{
		KindCurrentJobPosition.String(), rank, institutionRecid, startDate,
	}, UIDSeparator)
}

// PreviousJobPositionUID derives the uid of a finished job position.
func PreviousJobPositionUID(rank, institutionRecid, startDate, endDate string) string {
	return strings.Join([]string{
		KindPreviousJobPosition.String(), rank, institutionRecid, startDate, endDate,
	}, UIDSeparator)
}

// SortRecids returns the distinct, non-empty ids in ascending numeric order.
// Ids with a common prefix are ordered by their trailing number (I2 < I10).
func SortRecids(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareRecids(out[i], out[j]) < 0
	})
	return out
}

func compareRecids(a, b string) int {
	pa, na, oka := splitTrailingNumber(a)
	pb, nb, okb := splitTrailingNumber(b)
	if pa != pb {
		return strings.Compare(pa, pb)
	}
	switch {
	case oka && okb && na != nb:
		if na < nb {
			return -1
		}
		return 1
	case oka && !okb:
		return -1
	case !oka && okb:
		return 1
	}
	return strings.Compare(a, b)
}

func splitTrailingNumber(s string) (string, uint64, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.ParseUint(s[i:], 10, 64)
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}

func splitUID(kind Kind, uid string, parts int) ([]string, error) {
	fields := strings.Split(uid, UIDSeparator)
	if len(fields) != parts || fields[0] != kind.String() {
		return nil, newError("expand", kind, uid, ErrMalformedUID)
	}
	return fields, nil
}
