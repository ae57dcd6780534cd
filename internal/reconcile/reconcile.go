// Package reconcile builds remediation worklists for records that are
// missing required attributes.
package reconcile

import (
	"github.com/tordrt/tabrecon/internal/record"
)

// Entry is one venue (or other entity) and the required fields it lacks in
// at least one of its rows.
type Entry struct {
	ID      string   `json:"venue"`
	Missing []string `json:"missingFields"`
}

// Result is the outcome of a reconciliation pass.
type Result struct {
	Entries []Entry `json:"entries"`
	// Checked counts records that carried an identity and were inspected.
	Checked int `json:"checked"`
	// Flagged counts inspected records with at least one missing field.
	Flagged int `json:"flagged"`
	// Skipped counts malformed records with a blank identity field.
	Skipped int `json:"skipped"`
}

// FindMissingLocation flags records whose required fields are blank and folds
// them into one Entry per identity value.
//
// Missing fields are unioned across every row of the same identity. Entries
// come back in order of first occurrence and each Missing list follows the
// order of required, so repeated runs over the same input diff cleanly.
// Records with a blank identity are skipped and counted, never fatal.
func FindMissingLocation(records []record.Normalized, required []string, identity string) Result {
	var res Result
	required = RequiredFields(required)

	type slot struct {
		id      string
		missing map[string]struct{}
	}
	var order []*slot
	byID := make(map[string]*slot)

	for _, rec := range records {
		id := rec.Get(identity)
		if id == "" {
			res.Skipped++
			continue
		}
		res.Checked++

		var gaps []string
		for _, f := range required {
			if rec.Get(f) == "" {
				gaps = append(gaps, f)
			}
		}
		if len(gaps) == 0 {
			continue
		}
		res.Flagged++

		s, ok := byID[id]
		if !ok {
			s = &slot{id: id, missing: make(map[string]struct{})}
			byID[id] = s
			order = append(order, s)
		}
		for _, g := range gaps {
			s.missing[g] = struct{}{}
		}
	}

	res.Entries = make([]Entry, 0, len(order))
	for _, s := range order {
		e := Entry{ID: s.id}
		for _, f := range required {
			if _, ok := s.missing[f]; ok {
				e.Missing = append(e.Missing, f)
			}
		}
		res.Entries = append(res.Entries, e)
	}
	return res
}

// RequiredFields canonicalizes field names and drops blanks and repeats,
// keeping the first occurrence. Missing lists are built from this form.
func RequiredFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		c := record.Canonical(f)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
