package probe

import (
	"strings"

	"github.com/tordrt/tabrecon/internal/record"
)

// ResolveColumn returns the first column whose case-folded name contains every
// required substring, e.g. ResolveColumn(cols, "venue", "name") finds
// "Venue_Name". It reports false when nothing matches or nothing is required.
func ResolveColumn(columns []string, required ...string) (string, bool) {
	if len(required) == 0 {
		return "", false
	}

	want := make([]string, 0, len(required))
	for _, r := range required {
		if r = record.Canonical(r); r != "" {
			want = append(want, r)
		}
	}
	if len(want) == 0 {
		return "", false
	}

	for _, c := range columns {
		name := record.Canonical(c)
		ok := true
		for _, w := range want {
			if !strings.Contains(name, w) {
				ok = false
				break
			}
		}
		if ok {
			return c, true
		}
	}
	return "", false
}
