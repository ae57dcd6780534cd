package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	fm := FieldMap{
		"venue":       {"Venue", "Venue Name"},
		"city":        {"City"},
		"brand owner": {"BrandOwner", "Brand Owner"},
	}

	tests := []struct {
		name string
		raw  Raw
		want Normalized
	}{
		{
			name: "exact keys",
			raw:  Raw{"Venue": "Bar A", "City": "Milan", "BrandOwner": "Bacardi Martini"},
			want: Normalized{"venue": "bar a", "city": "milan", "brand owner": "bacardi martini"},
		},
		{
			name: "second candidate used when first missing",
			raw:  Raw{"Venue Name": "Bar B", "City": "Rome"},
			want: Normalized{"venue": "bar b", "city": "rome", "brand owner": ""},
		},
		{
			name: "key casing and spacing drift",
			raw:  Raw{" VENUE ": "Bar C", "city": "Turin", "brand owner": "Campari"},
			want: Normalized{"venue": "bar c", "city": "turin", "brand owner": "campari"},
		},
		{
			name: "quotes whitespace and nil",
			raw:  Raw{"Venue": ` "Bar D" `, "City": nil},
			want: Normalized{"venue": "bar d", "city": "", "brand owner": ""},
		},
		{
			name: "non string values",
			raw:  Raw{"Venue": 42.0, "City": []byte(" Naples\t"), "BrandOwner": true},
			want: Normalized{"venue": "42", "city": "naples", "brand owner": "true"},
		},
		{
			name: "empty row",
			raw:  Raw{},
			want: Normalized{"venue": "", "city": "", "brand owner": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, fm)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeFoldedKeyCollision(t *testing.T) {
	fm := FieldMap{
		"city": {"Town"},
		"City": {"Municipality"},
	}
	raw := Raw{"Town": "Milan", "Municipality": "Rome"}

	// "City" sorts before "city", so its candidates are tried first.
	for i := 0; i < 50; i++ {
		got := Normalize(raw, fm)
		if diff := cmp.Diff(Normalized{"city": "rome"}, got); diff != "" {
			t.Fatalf("Normalize() mismatch on run %d (-want +got):\n%s", i, diff)
		}
	}

	got := Normalize(Raw{"Town": "Milan"}, fm)
	if got.Get("city") != "milan" {
		t.Errorf("Expected fallback to the other key's candidates, got %q", got.Get("city"))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	fm := FieldMap{
		"venue": {"Venue"},
		"city":  {"City"},
		"notes": {"Notes"},
	}
	raws := []Raw{
		{"Venue": `'"Bar A"'`, "City": "  MILAN ", "Notes": "line\none"},
		{"Venue": `"`, "City": `''`},
		{"Venue": "Straße", "City": "İzmir"},
	}

	for _, raw := range raws {
		once := Normalize(raw, fm)
		twice := Normalize(once.Raw(), fm)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("Normalize() not idempotent for %v (-once +twice):\n%s", raw, diff)
		}
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll(Raw{"ID": 7, "Name": " Bar A ", "city": nil})
	want := Normalized{"id": "7", "name": "bar a", "city": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  ", ""},
		{`"Milan"`, "milan"},
		{`'Milan'`, "milan"},
		{`"Milan'`, `"milan'`},
		{"a\x00b", "ab"},
		{int64(12), "12"},
		{3.50, "3.5"},
	}
	for _, tt := range tests {
		if got := Value(tt.in); got != tt.want {
			t.Errorf("Value(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFields(t *testing.T) {
	n := Normalize(Raw{"Category Name": "Rum"}, Fields("Category Name"))
	if got := n.Get("category name"); got != "rum" {
		t.Errorf("Get() = %q, want %q", got, "rum")
	}
}
