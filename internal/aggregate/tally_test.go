package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tordrt/tabrecon/internal/record"
)

func TestGroupByDistinctKeys(t *testing.T) {
	recs := normalizeAll([]record.Raw{
		{"Venue": "Bar A", "City": "Milan", "Category": "Rum"},
		{"Venue": "Bar A", "City": "Milan", "Category": "Rum"},
		{"Venue": "Bar B", "City": "Rome", "Category": "Rum"},
		{"Venue": "Bar C", "City": "Rome", "Category": "Gin"},
	})

	tally := GroupBy(recs, "category", []string{"venue", "city"})
	want := []Group{
		{Value: "rum", Count: 2, Percentage: Percentage(2, 3)},
		{Value: "gin", Count: 1, Percentage: Percentage(1, 3)},
	}
	if diff := cmp.Diff(want, tally.Groups()); diff != "" {
		t.Errorf("Groups() mismatch (-want +got):\n%s", diff)
	}
	if tally.Total() != 3 {
		t.Errorf("Total() = %d, want 3", tally.Total())
	}

	members := tally.Members("rum")
	if len(members) != 2 || members[0].String() != "bar a / milan" {
		t.Errorf("Members(rum) = %v", members)
	}
}

func TestGroupByRows(t *testing.T) {
	recs := normalizeAll([]record.Raw{
		{"City": "Milan"},
		{"City": "Milan"},
		{"City": ""},
	})

	tally := GroupBy(recs, "city", nil)
	if got := tally.Count("milan"); got != 2 {
		t.Errorf("Count(milan) = %d, want 2", got)
	}
	if got := tally.Count(""); got != 1 {
		t.Errorf("Count(\"\") = %d, want 1", got)
	}
	if tally.Total() != 3 {
		t.Errorf("Total() = %d, want 3", tally.Total())
	}
}

func TestGroupsTieBreakByValue(t *testing.T) {
	tally := NewTally("brand")
	tally.Add("b", "k1")
	tally.Add("a", "k2")

	groups := tally.Groups()
	if groups[0].Value != "a" || groups[1].Value != "b" {
		t.Errorf("Groups() order = %v", groups)
	}
}
