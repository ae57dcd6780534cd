package aggregate

import (
	"sort"
	"strconv"

	"github.com/tordrt/tabrecon/internal/record"
)

// Group is one row of a group-by report.
type Group struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Tally accumulates distinct keys per dimension value. It is built fresh for
// every run and read once at the end.
type Tally struct {
	Dimension string
	members   map[string]map[record.Key]struct{}
	universe  map[record.Key]struct{}
}

// NewTally returns an empty Tally for dimension.
func NewTally(dimension string) *Tally {
	return &Tally{
		Dimension: dimension,
		members:   make(map[string]map[record.Key]struct{}),
		universe:  make(map[record.Key]struct{}),
	}
}

// Add records that key was seen with the given dimension value.
func (t *Tally) Add(value string, key record.Key) {
	set, ok := t.members[value]
	if !ok {
		set = make(map[record.Key]struct{})
		t.members[value] = set
	}
	set[key] = struct{}{}
	t.universe[key] = struct{}{}
}

// Total is the number of distinct keys seen across all groups.
func (t *Tally) Total() int {
	return len(t.universe)
}

// Count returns the number of distinct keys seen for value.
func (t *Tally) Count(value string) int {
	return len(t.members[value])
}

// Members returns the keys recorded under value, sorted.
func (t *Tally) Members(value string) []record.Key {
	set := t.members[value]
	out := make([]record.Key, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Groups returns every group sorted by count descending, then by value.
// Percentages are relative to Total. A key that appears under several
// dimension values counts toward each of them, so percentages may sum past 100.
func (t *Tally) Groups() []Group {
	total := t.Total()
	out := make([]Group, 0, len(t.members))
	for v, set := range t.members {
		out = append(out, Group{
			Value:      v,
			Count:      len(set),
			Percentage: Percentage(len(set), total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// GroupBy tallies distinct keys per value of dimension. With no keyFields every
// row is its own key, so the tally counts rows.
func GroupBy(records []record.Normalized, dimension string, keyFields []string) *Tally {
	t := NewTally(dimension)
	for i, rec := range records {
		var k record.Key
		if len(keyFields) == 0 {
			k = rowKey(i)
		} else {
			k = record.BuildKey(rec, keyFields)
		}
		t.Add(rec.Get(dimension), k)
	}
	return t
}

func rowKey(i int) record.Key {
	return record.Key("#" + strconv.Itoa(i))
}
