package aggregate

import (
	"strings"

	"github.com/tordrt/tabrecon/internal/record"
)

// Predicate selects records for the numerator of an Aggregate call.
type Predicate func(record.Normalized) bool

// FieldEquals matches records whose field equals value after value has been
// normalized the same way record values are.
func FieldEquals(field, value string) Predicate {
	want := record.Value(value)
	return func(r record.Normalized) bool {
		return r.Get(field) == want
	}
}

// FieldContains matches records whose field contains substr, compared in
// normalized form.
func FieldContains(field, substr string) Predicate {
	want := record.Value(substr)
	return func(r record.Normalized) bool {
		return strings.Contains(r.Get(field), want)
	}
}

// FieldBlank matches records with an empty field.
func FieldBlank(field string) Predicate {
	return func(r record.Normalized) bool {
		return r.Get(field) == ""
	}
}

// And matches when every predicate matches. And() matches everything.
func And(preds ...Predicate) Predicate {
	return func(r record.Normalized) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches. Or() matches nothing.
func Or(preds ...Predicate) Predicate {
	return func(r record.Normalized) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(r record.Normalized) bool {
		return !p(r)
	}
}
