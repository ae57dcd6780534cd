package record

import "testing"

func TestBuildKeyScenario(t *testing.T) {
	fm := Fields("Venue", "City")
	a := Normalize(Raw{"Venue": "Bar A", "City": " milan "}, fm)
	b := Normalize(Raw{"Venue": "Bar A", "City": "Milan"}, fm)

	fields := []string{"Venue", "City"}
	if BuildKey(a, fields) != BuildKey(b, fields) {
		t.Errorf("expected equal keys, got %q and %q", BuildKey(a, fields), BuildKey(b, fields))
	}
}

func TestBuildKeyInjective(t *testing.T) {
	fields := []string{"venue", "city"}
	tests := []struct {
		name  string
		a, b  Normalized
		equal bool
	}{
		{
			name:  "same values",
			a:     Normalized{"venue": "bar a", "city": "milan"},
			b:     Normalized{"venue": "bar a", "city": "milan"},
			equal: true,
		},
		{
			name: "hyphen and comma are plain content",
			a:    Normalized{"venue": "bar-a", "city": "milan"},
			b:    Normalized{"venue": "bar", "city": "a-milan"},
		},
		{
			name: "shifted boundary",
			a:    Normalized{"venue": "bar a,", "city": "milan"},
			b:    Normalized{"venue": "bar a", "city": ",milan"},
		},
		{
			name:  "empty versus missing field",
			a:     Normalized{"venue": "bar a", "city": ""},
			b:     Normalized{"venue": "bar a"},
			equal: true,
		},
		{
			name: "near duplicate is not merged",
			a:    Normalized{"venue": "bar a", "city": "milan"},
			b:    Normalized{"venue": "bar  a", "city": "milan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildKey(tt.a, fields) == BuildKey(tt.b, fields)
			if got != tt.equal {
				t.Errorf("keys equal = %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestBuildKeySeparatorNeverInValue(t *testing.T) {
	a := Normalize(Raw{"v": "x" + Separator + "y", "c": "z"}, Fields("v", "c"))
	b := Normalize(Raw{"v": "x", "c": "y" + Separator + "z"}, Fields("v", "c"))
	if BuildKey(a, []string{"v", "c"}) == BuildKey(b, []string{"v", "c"}) {
		t.Error("expected distinct keys when separator appears in source values")
	}
}

func TestKeyParts(t *testing.T) {
	k := BuildKey(Normalized{"venue": "bar a", "city": "milan"}, []string{"venue", "city"})
	parts := k.Parts()
	if len(parts) != 2 || parts[0] != "bar a" || parts[1] != "milan" {
		t.Errorf("Parts() = %v", parts)
	}
	if k.String() != "bar a / milan" {
		t.Errorf("String() = %q", k.String())
	}
}
