// Package aggregate computes distinct counts, group-by tallies, and
// percentage rollups over normalized records.
//
// All counting is done over composite keys, never over raw rows, so a venue
// listed five times in an export still counts once.
package aggregate

import (
	"sort"

	"github.com/tordrt/tabrecon/internal/record"
)

// Result is a ratio rollup: how many distinct keys exist overall and how many
// of them match a filter.
type Result struct {
	Total      int     `json:"total"`
	Matching   int     `json:"matching"`
	Percentage float64 `json:"percentage"`
}

// Aggregate counts distinct keys across records and among the records for
// which filter holds. A nil filter matches every record.
//
// A key counts as matching when at least one of its records matches.
func Aggregate(records []record.Normalized, keyFields []string, filter Predicate) Result {
	all := make(map[record.Key]struct{})
	matching := make(map[record.Key]struct{})

	for _, rec := range records {
		k := record.BuildKey(rec, keyFields)
		all[k] = struct{}{}
		if filter == nil || filter(rec) {
			matching[k] = struct{}{}
		}
	}

	return Result{
		Total:      len(all),
		Matching:   len(matching),
		Percentage: Percentage(len(matching), len(all)),
	}
}

// Percentage returns part/whole*100, or 0 when whole is not positive.
func Percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}

// UniqueValues returns the set of distinct non-blank values of field.
func UniqueValues(records []record.Normalized, field string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, rec := range records {
		if v := rec.Get(field); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// SortedValues returns the members of set in ascending order.
func SortedValues(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
