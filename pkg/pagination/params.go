package pagination

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortDir is the direction of the alert list ordering.
type SortDir string

const (
	SortAscending  SortDir = "ascending"
	SortDescending SortDir = "descending"
)

// SortFieldCreatedAt is the only sort field the alerts API supports.
const SortFieldCreatedAt = "createdAt"

// ParseSortDir accepts "asc"/"ascending" and "desc"/"descending" in any case.
// An empty string yields an empty SortDir, leaving the server default in place.
func ParseSortDir(s string) (SortDir, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

// Params are the filter and sort parameters of a list request. They are
// passed explicitly to Initialize and UpdateParams; a change in params
// invalidates the accumulated position in the result set.
type Params struct {
	SortBy          string     `json:"sortBy,omitempty"`
	SortDir         SortDir    `json:"sortDir,omitempty"`
	Severity        []string   `json:"severity,omitempty"`
	Status          []string   `json:"status,omitempty"`
	NameContains    string     `json:"nameContains,omitempty"`
	RuleID          string     `json:"ruleId,omitempty"`
	CreatedAtAfter  *time.Time `json:"createdAtAfter,omitempty"`
	CreatedAtBefore *time.Time `json:"createdAtBefore,omitempty"`
}

// IsEmpty reports whether no filter or sort parameter is set.
func (p Params) IsEmpty() bool {
	return p.Key() == ""
}

// Key generates a deterministic string for the parameter set.
// Multi-valued filters are sorted so that {HIGH, LOW} and {LOW, HIGH} match.
//
// Example:
//
//	sortBy=createdAt:sortDir=descending:severity=CRITICAL,HIGH
func (p Params) Key() string {
	var parts []string

	add := func(name, value string) {
		if value != "" {
			parts = append(parts, name+"="+value)
		}
	}

	add("sortBy", p.SortBy)
	add("sortDir", string(p.SortDir))
	add("severity", joinSorted(p.Severity))
	add("status", joinSorted(p.Status))
	add("nameContains", p.NameContains)
	add("ruleId", p.RuleID)
	if p.CreatedAtAfter != nil {
		add("createdAtAfter", p.CreatedAtAfter.UTC().Format(time.RFC3339Nano))
	}
	if p.CreatedAtBefore != nil {
		add("createdAtBefore", p.CreatedAtBefore.UTC().Format(time.RFC3339Nano))
	}

	return strings.Join(parts, ":")
}

// Equal reports whether both parameter sets select the same result set.
func (p Params) Equal(other Params) bool {
	return p.Key() == other.Key()
}

func joinSorted(values []string) string {
	if len(values) == 0 {
		return ""
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}
