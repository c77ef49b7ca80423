package utils

import "testing"

func TestToSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Orły Białej", "orly-bialej"},
		{"  Żółć & Gęś  ", "zolc-ges"},
		{"Spike--Zone!!", "spike-zone"},
		{"--edge--", "edge"},
		{"Crème Brûlée 2025", "creme-brulee-2025"},
		{"Straße", "strasse"},
		{"!!!", ""},
		{"ABC", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToSlug(tt.in); got != tt.want {
				t.Fatalf("ToSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToSlugIsDeterministic(t *testing.T) {
	name := "Siatkarskie Łosie"
	if ToSlug(name) != ToSlug(name) {
		t.Fatal("expected the same slug for the same input")
	}
}

func TestTrimmedLen(t *testing.T) {
	if got := TrimmedLen("  Łoś "); got != 3 {
		t.Fatalf("TrimmedLen = %d, want 3", got)
	}
}
