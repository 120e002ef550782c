// Package matcher resolves which raw survey record belongs to which district.
package matcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stwalsh4118/wardlens/internal/models"
)

// Name labels recognized in display names.
var nameLabels = []string{"Ward", "District"}

// MatchDistrict returns the first record belonging to district, or nil.
// Records are tried in two passes: identifier ending with the district
// numeral, then display name containing "Ward n" or "District n". The first
// match wins and ambiguity is not reported.
func MatchDistrict(records []models.RawRecord, district int) models.RawRecord {
	suffix := strconv.Itoa(district)

	for _, r := range records {
		if r == nil {
			continue
		}
		if id := r.ID(); id != "" && strings.HasSuffix(id, suffix) {
			return r
		}
	}

	for _, r := range records {
		if r == nil {
			continue
		}
		if nameMatches(r.Name(), district) {
			return r
		}
	}

	return nil
}

// ResolveDistrict returns which of the candidate districts a record belongs
// to, using the same two passes as MatchDistrict.
func ResolveDistrict(record models.RawRecord, districts []int) (int, bool) {
	if record == nil {
		return 0, false
	}

	if id := record.ID(); id != "" {
		for _, d := range districts {
			if strings.HasSuffix(id, strconv.Itoa(d)) {
				return d, true
			}
		}
	}

	name := record.Name()
	for _, d := range districts {
		if nameMatches(name, d) {
			return d, true
		}
	}

	return 0, false
}

func nameMatches(name string, district int) bool {
	if name == "" {
		return false
	}
	for _, label := range nameLabels {
		if strings.Contains(name, fmt.Sprintf("%s %d", label, district)) {
			return true
		}
	}
	return false
}
