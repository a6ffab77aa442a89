package models

import "testing"

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
	}{
		{"revenue", SortByRevenue},
		{"category", SortByCategory},
		{"listings", SortByListings},
		{"price", SortByPrice},
		{"rating", SortByRating},
		{"", SortByRevenue},
		{"bogus", SortByRevenue},
		{"Category", SortByRevenue}, // matching is case-sensitive
	}

	for _, tt := range tests {
		if got := ParseSortKey(tt.in); got != tt.want {
			t.Errorf("ParseSortKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSortKey_RoundTrip(t *testing.T) {
	for _, key := range []SortKey{SortByRevenue, SortByCategory, SortByListings, SortByPrice, SortByRating} {
		if got := ParseSortKey(key.String()); got != key {
			t.Errorf("ParseSortKey(%q) = %v, want %v", key.String(), got, key)
		}
	}
}

func TestParseSortDir(t *testing.T) {
	tests := []struct {
		in   string
		want SortDir
	}{
		{"asc", SortAsc},
		{"desc", SortDesc},
		{"", SortAsc},
		{"DESC", SortAsc},
		{"descending", SortAsc},
	}

	for _, tt := range tests {
		if got := ParseSortDir(tt.in); got != tt.want {
			t.Errorf("ParseSortDir(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOverviewMetrics_RevenueDeltaLabel(t *testing.T) {
	if got := (OverviewMetrics{}).RevenueDeltaLabel(); got != "" {
		t.Errorf("label without delta = %q, want empty", got)
	}

	up := 12.34
	if got := (OverviewMetrics{RevenueDeltaPct: &up}).RevenueDeltaLabel(); got != "+12.3%" {
		t.Errorf("label = %q, want +12.3%%", got)
	}

	down := -5.0
	if got := (OverviewMetrics{RevenueDeltaPct: &down}).RevenueDeltaLabel(); got != "-5.0%" {
		t.Errorf("label = %q, want -5.0%%", got)
	}
}
