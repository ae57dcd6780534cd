package db

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tordrt/tabrecon/internal/record"
	"github.com/tordrt/tabrecon/internal/schema"
)

func TestMemoryStoreSelect(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Load("venues", []string{"id", "name", "city"}, []record.Raw{
		{"id": 1, "name": "Bar A", "city": "Milan"},
		{"id": 2, "name": "Bar B", "city": "Rome"},
		{"id": 3, "name": "Bar C", "city": "milan"},
	})

	tests := []struct {
		name      string
		q         Query
		wantRows  int
		wantCols  []string
		wantCount *int
	}{
		{
			name:     "all rows",
			q:        Query{},
			wantRows: 3,
			wantCols: []string{"id", "name", "city"},
		},
		{
			name:      "capped with count",
			q:         Query{MaxRows: 1, ExactCount: true},
			wantRows:  1,
			wantCols:  []string{"id", "name", "city"},
			wantCount: intPtr(3),
		},
		{
			name:      "filtered projection",
			q:         Query{Columns: []string{"name"}, Filters: []Filter{{Column: "city", Value: "MILAN"}}, ExactCount: true},
			wantRows:  2,
			wantCols:  []string{"name"},
			wantCount: intPtr(2),
		},
		{
			name:      "no match has no columns",
			q:         Query{Filters: []Filter{{Column: "city", Value: "Paris"}}, ExactCount: true},
			wantRows:  0,
			wantCount: intPtr(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := s.Select(ctx, "venues", tt.q)
			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if len(rs.Rows) != tt.wantRows {
				t.Errorf("got %d rows, want %d", len(rs.Rows), tt.wantRows)
			}
			if diff := cmp.Diff(tt.wantCols, rs.Columns); diff != "" {
				t.Errorf("Columns mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCount, rs.Count); diff != "" {
				t.Errorf("Count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.CreateTable("venues", "id", "name", "city")

	_, err := s.Select(ctx, "missing", Query{MaxRows: 1})
	if schema.KindOf(err) != schema.KindNotFound {
		t.Errorf("Select(missing) kind = %v, want not_found", schema.KindOf(err))
	}

	err = s.Insert(ctx, "venues", record.Raw{"invalid_column_name_probe": "probe"})
	e, ok := schema.AsError(err)
	if !ok || e.Kind != schema.KindQuery {
		t.Fatalf("Insert(bogus) error = %v, want query error", err)
	}
	if !strings.Contains(e.Text(), `valid columns are: "id", "name", "city"`) {
		t.Errorf("rejection text = %q", e.Text())
	}

	if err := s.Insert(ctx, "venues", record.Raw{"id": 9, "name": "Bar Z"}); err != nil {
		t.Fatalf("Insert(valid) error: %v", err)
	}
	rs, err := s.Select(ctx, "venues", Query{ExactCount: true})
	if err != nil || *rs.Count != 1 {
		t.Errorf("after insert: rs=%+v err=%v", rs, err)
	}
}

func intPtr(n int) *int { return &n }
