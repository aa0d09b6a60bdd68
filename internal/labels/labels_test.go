package labels

import (
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestDefaultTable(t *testing.T) {
	table := Default()
	if table.Len() != 62 {
		t.Fatalf("Len() = %d, want 62", table.Len())
	}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"01_창세기", "01_Genesis", true},
		{"18_욥기/", "18_Job", true},
		{"60_베드로전후,유다서", "60_1Peter_2Peter_Jude", true},
		{norm.NFD.String("19_시편"), "19_Psalms", true},
		{"99_외경", "", false},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCanonicalFallsBackToName(t *testing.T) {
	table := New(map[string]string{"a": "A"})
	if got := table.Canonical("a/"); got != "A" {
		t.Errorf("Canonical(a/) = %q", got)
	}
	if got := table.Canonical("misc/"); got != "misc" {
		t.Errorf("Canonical(misc/) = %q, want misc", got)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"18_Job", 18, true},
		{"01_창세기", 1, true},
		{"Genesis", 0, false},
		{"xx_Genesis", 0, false},
	}
	for _, tt := range tests {
		got, ok := Number(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Number(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
