package probe

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPatternExtractor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "hint list",
			text: "column \"invalid_column_name_probe\" of relation \"venues\" does not exist\nvalid columns are: id, name, city",
			want: []string{"id", "name", "city"},
		},
		{
			name: "inline list with trailing period",
			text: `column "invalid_column_name_probe" does not exist. Valid columns are: "id", "name", "city".`,
			want: []string{"id", "name", "city"},
		},
		{
			name: "available columns",
			text: "Unknown field. Available columns: `Venue_Name`, `City`, `Region`",
			want: []string{"Venue_Name", "City", "Region"},
		},
		{
			name: "bracketed list",
			text: "bad insert; columns: ['id', 'name', 'id']",
			want: []string{"id", "name"},
		},
		{
			name: "names with spaces",
			text: `column "invalid_column_name_probe" of relation "venues" does not exist
valid columns are: "Venue Name", "City", "Brand and Owner"`,
			want: []string{"Venue Name", "City", "Brand and Owner"},
		},
		{
			name: "unquoted names with spaces",
			text: "valid columns are: Venue Name, City",
			want: []string{"Venue Name", "City"},
		},
		{
			name: "english list",
			text: "column does not exist; valid columns are id, name and city",
			want: []string{"id", "name", "city"},
		},
		{
			name: "serial comma",
			text: "valid columns are: id, name, and city",
			want: []string{"id", "name", "city"},
		},
		{
			name: "trailing sentence",
			text: "valid columns are: id, name, city. Check the request body",
			want: []string{"id", "name", "city"},
		},
		{
			name: "hint and details on one line",
			text: "column \"invalid_column_name_probe\" does not exist. Available columns: id, venue_name; Details: see the schema cache",
			want: []string{"id", "venue_name"},
		},
		{
			name: "qualified names",
			text: "valid columns are: crm.id, crm.name. Retry with one of them",
			want: []string{"crm.id", "crm.name"},
		},
		{
			name: "no list",
			text: "Unknown column 'invalid_column_name_probe' in 'field list'",
			want: nil,
		},
		{
			name: "empty list",
			text: "valid columns are: ",
			want: nil,
		},
	}

	e := NewPatternExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, e.Extract(tt.text)); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatternExtractorCustomPatterns(t *testing.T) {
	e := &PatternExtractor{Patterns: []*regexp.Regexp{regexp.MustCompile(`expected one of \{([^}]*)\}`)}}

	got := e.Extract("expected one of {sku, brand, owner}")
	if diff := cmp.Diff([]string{"sku", "brand", "owner"}, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveColumn(t *testing.T) {
	columns := []string{"id", "Venue_City", "Venue_Name", "BrandOwner"}

	tests := []struct {
		name     string
		required []string
		want     string
		wantOK   bool
	}{
		{name: "single substring", required: []string{"owner"}, want: "BrandOwner", wantOK: true},
		{name: "all substrings", required: []string{"venue", "name"}, want: "Venue_Name", wantOK: true},
		{name: "first match wins", required: []string{"VENUE"}, want: "Venue_City", wantOK: true},
		{name: "no match", required: []string{"region"}},
		{name: "nothing required"},
		{name: "blank requirement", required: []string{"  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveColumn(columns, tt.required...)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}
