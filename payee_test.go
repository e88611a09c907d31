package checkbook

import (
	"reflect"
	"testing"
)

func TestPayeesAgree(t *testing.T) {
	testCases := []struct {
		name string
		a, b string
		want bool
	}{
		{"same", "Starbucks", "STARBUCKS", true},
		{"first token contained", "Shell", "SHELL OIL #4521", true},
		{"first token of the bank side", "Whole Foods Market", "WHOLE FOODS MKT 10234", true},
		{"first token anywhere", "The Corner Deli", "corner deli the", true},
		{"jaccard", "ATM Trader Joes Market Store", "POS Trader Joes Market Store", true},
		{"jaccard at threshold", "ATM Trader Joes Market", "POS Trader Joes Market", false},
		{"punctuation stripped", "Joe's Pizza", "joes pizza", true},
		{"unrelated", "Gas Station", "SHELL OIL #4521", false},
		{"low jaccard", "City Water Dept", "Utility Water Co", false},
		{"empty", "", "SHELL", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PayeesAgree(tc.a, tc.b); got != tc.want {
				t.Errorf("PayeesAgree(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	testCases := []struct {
		a, b string
		want float64
	}{
		{"a b c", "a b c", 1},
		{"a b", "b c", 1.0 / 3},
		{"Amazon.com", "amazoncom", 1},
		{"", "", 0},
		{"x", "", 0},
	}
	for _, tc := range testCases {
		if got := Jaccard(tc.a, tc.b); got != tc.want {
			t.Errorf("Jaccard(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSuggestPayees(t *testing.T) {
	recent := []string{"STARBUCKS #123", "Shell Oil", "starbucks #123", "Star Market", "Netflix", "Starlink"}
	testCases := []struct {
		name    string
		entered string
		n       int
		want    []string
	}{
		{"prefix first, duplicates removed", "star", 5, []string{"STARBUCKS #123", "Star Market", "Starlink"}},
		{"limited", "star", 2, []string{"STARBUCKS #123", "Star Market"}},
		{"token", "oil", 3, []string{"Shell Oil"}},
		{"nothing", "zzz", 3, []string{}},
		{"empty", "  ", 3, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SuggestPayees(tc.entered, recent, tc.n)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SuggestPayees(%q, %d) = %q, want %q", tc.entered, tc.n, got, tc.want)
			}
		})
	}
}
