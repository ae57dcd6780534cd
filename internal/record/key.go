package record

import "strings"

// Separator joins the values of a composite key. Value strips control
// characters, so it never appears inside a normalized value.
const Separator = "\x1f"

// Key is a composite deduplication key built from normalized field values.
type Key string

// BuildKey joins the values of fields, in order, into a Key.
//
// Two records produce the same key iff every listed field has the same
// normalized value. There is no fuzzy matching: "bar a" and "bar  a" stay
// distinct entities.
func BuildKey(rec Normalized, fields []string) Key {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = rec.Get(f)
	}
	return Key(strings.Join(parts, Separator))
}

// Parts splits k back into its field values.
func (k Key) Parts() []string {
	return strings.Split(string(k), Separator)
}

// String renders k for humans, with " / " between parts.
func (k Key) String() string {
	return strings.Join(k.Parts(), " / ")
}
