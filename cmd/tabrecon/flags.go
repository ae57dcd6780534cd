package main

import (
	"fmt"
	"strings"

	"github.com/tordrt/tabrecon/internal/aggregate"
	"github.com/tordrt/tabrecon/internal/record"
)

// parseList splits a comma-separated flag value, dropping blanks
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFieldMap turns "venue=Venue_Name|Outlet" entries into a FieldMap.
func parseFieldMap(args []string) (record.FieldMap, error) {
	fm := record.FieldMap{}
	for _, arg := range args {
		name, sources, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field mapping %q (expected canonical=Source1|Source2)", arg)
		}
		var candidates []string
		for _, s := range strings.Split(sources, "|") {
			if s = strings.TrimSpace(s); s != "" {
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			candidates = []string{name}
		}
		fm[name] = candidates
	}
	return fm, nil
}

// parseWhere turns "field=value" entries into one ANDed predicate. A nil
// predicate matches everything.
func parseWhere(args []string) (aggregate.Predicate, error) {
	var preds []aggregate.Predicate
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q (expected field=value)", arg)
		}
		preds = append(preds, aggregate.FieldEquals(field, value))
	}
	if len(preds) == 0 {
		return nil, nil
	}
	return aggregate.And(preds...), nil
}

type resolveRequest struct {
	field      string
	substrings []string
}

// parseResolve turns "venue=venue+name" entries into resolution requests. A
// bare "venue" resolves by its own name.
func parseResolve(args []string) ([]resolveRequest, error) {
	var out []resolveRequest
	for _, arg := range args {
		field, subs, ok := strings.Cut(arg, "=")
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("invalid resolve value %q (expected field=sub1+sub2)", arg)
		}
		r := resolveRequest{field: field}
		if ok {
			for _, s := range strings.Split(subs, "+") {
				if s = strings.TrimSpace(s); s != "" {
					r.substrings = append(r.substrings, s)
				}
			}
		}
		if len(r.substrings) == 0 {
			r.substrings = []string{field}
		}
		out = append(out, r)
	}
	return out, nil
}
