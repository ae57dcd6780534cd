// Package record turns loosely shaped source rows into comparable records.
//
// Rows arrive from CSV exports, spreadsheets, and remote selects with field
// names whose casing and spacing drift from file to file. Everything that
// guesses "which source key is the real column" lives here, so the rest of
// the engine only ever sees canonical field names and canonical values.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
)

// Raw is a source row: field name as supplied by the source mapped to its value.
// Values are usually strings but remote stores also hand back numbers, booleans,
// byte slices, and nil.
type Raw map[string]any

// Normalized maps canonical field names to trimmed, case-folded values.
// Absent or blank input fields are stored as "".
type Normalized map[string]string

// FieldMap maps a canonical field name to the source-key spellings that may
// carry it, in order of preference.
type FieldMap map[string][]string

// Fields builds a FieldMap where each name is its own only candidate.
// Lookups still match source keys that differ only in case or surrounding space.
func Fields(names ...string) FieldMap {
	fm := make(FieldMap, len(names))
	for _, n := range names {
		fm[Canonical(n)] = []string{n}
	}
	return fm
}

// Canonical is the single canonicalization rule for field names: trim and
// Unicode case fold.
func Canonical(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Normalize projects raw onto the canonical fields of fm.
//
// For every canonical field the first candidate present in raw wins. Candidates
// are matched exactly first and then by canonical name, so "City", "city " and
// "CITY" all resolve to the same source key. Missing fields normalize to "".
//
// FieldMap keys that fold to the same canonical name share one field; their
// candidate lists are tried in sorted key order.
func Normalize(raw Raw, fm FieldMap) Normalized {
	names := make([]string, 0, len(fm))
	for name := range fm {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := make(map[string][]string, len(fm))
	var order []string
	for _, name := range names {
		canon := Canonical(name)
		if _, ok := merged[canon]; !ok {
			order = append(order, canon)
		}
		candidates := fm[name]
		if len(candidates) == 0 {
			candidates = []string{name}
		}
		merged[canon] = append(merged[canon], candidates...)
	}

	out := make(Normalized, len(order))
	var idx map[string]string
	for _, canon := range order {
		candidates := merged[canon]
		v, ok := lookupExact(raw, candidates)
		if !ok {
			if idx == nil {
				idx = canonicalIndex(raw)
			}
			v, ok = lookupCanonical(raw, idx, candidates)
		}
		if !ok {
			out[canon] = ""
			continue
		}
		out[canon] = Value(v)
	}
	return out
}

// NormalizeAll normalizes every field present in raw.
func NormalizeAll(raw Raw) Normalized {
	out := make(Normalized, len(raw))
	for _, k := range sortedKeys(raw) {
		canon := Canonical(k)
		if _, seen := out[canon]; seen {
			continue
		}
		out[canon] = Value(raw[k])
	}
	return out
}

// Get returns the value stored under the canonical form of field.
func (n Normalized) Get(field string) string {
	return n[Canonical(field)]
}

// Raw converts n back into a Raw row keyed by canonical names.
func (n Normalized) Raw() Raw {
	r := make(Raw, len(n))
	for k, v := range n {
		r[k] = v
	}
	return r
}

// Value canonicalizes a single source value.
//
// The value is stringified, stripped of control characters, trimmed, stripped
// of surrounding matching quotes left behind by naive CSV splitting, and case
// folded. Quote stripping removes one layer per pass and repeats until the
// value stops changing, which keeps Normalize idempotent.
func Value(v any) string {
	s := stringify(v)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first != last || (first != '"' && first != '\'') {
			break
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	return cases.Fold().String(s)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func lookupExact(raw Raw, candidates []string) (any, bool) {
	for _, c := range candidates {
		if v, ok := raw[c]; ok {
			return v, true
		}
	}
	return nil, false
}

func lookupCanonical(raw Raw, idx map[string]string, candidates []string) (any, bool) {
	for _, c := range candidates {
		if k, ok := idx[Canonical(c)]; ok {
			return raw[k], true
		}
	}
	return nil, false
}

// canonicalIndex maps canonical key -> source key. When two source keys fold
// to the same canonical name, the lexically first one wins.
func canonicalIndex(raw Raw) map[string]string {
	idx := make(map[string]string, len(raw))
	for _, k := range sortedKeys(raw) {
		canon := Canonical(k)
		if _, ok := idx[canon]; !ok {
			idx[canon] = k
		}
	}
	return idx
}

func sortedKeys(raw Raw) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
