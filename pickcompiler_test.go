package main

import (
	"reflect"
	"testing"
)

func TestCompilePickListEmpty(t *testing.T) {
	picks, err := CompilePickList("", 4, TabbyXAYB, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4}
	if !reflect.DeepEqual(picks, want) {
		t.Errorf("got %v, want %v", picks, want)
	}
}

func TestCompilePickListRanges(t *testing.T) {
	tests := []struct {
		name string
		expr string
		max  int
		want []int
	}{
		{"single", "3", 5, []int{3}},
		{"ascending range", "1-3", 5, []int{1, 2, 3}},
		{"descending range", "3-1", 5, []int{3, 2, 1}},
		{"comma list", "1,3,5", 5, []int{1, 3, 5}},
		{"multiplier", "2x1", 5, []int{1, 1}},
		{"group with multiplier", "2x(1,2)", 5, []int{1, 2, 1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CompilePickList(tc.expr, tc.max, TabbyXAYB, false)
			if err != nil {
				t.Fatalf("CompilePickList(%q): unexpected error: %v", tc.expr, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("CompilePickList(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestCompilePickListTabbyRun(t *testing.T) {
	got, err := CompilePickList("AB", 5, TabbyXAYB, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{TabbyA, TabbyB}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompilePickListAutoTabby(t *testing.T) {
	// "~1-2" with the XAYB pattern inserts a tabby after each pattern pick,
	// alternating A/B since consecutive tabby markers reset picksSinceTabby.
	got, err := CompilePickList("~1-2", 5, TabbyXAYB, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, TabbyA, 2, TabbyB}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompilePickListAutoTabbyBeforePattern(t *testing.T) {
	got, err := CompilePickList("~1-2", 5, TabbyAXBY, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{TabbyA, 1, TabbyB, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestCompilePickListLeadingTildeRange covers spec.md §8's worked example:
// a leading "~" combined with a plain "-" range separator extends the tabby
// marking across the whole range, it does not collide with it ("~4-5" is not
// "spurious ~" the way "~4~5" is).
func TestCompilePickListLeadingTildeRange(t *testing.T) {
	got, err := CompilePickList("1-3,~4-5,3x(A,6)", 6, TabbyAXBY, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, TabbyA, 4, TabbyB, 5, TabbyA, 6, TabbyA, 6, TabbyA, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompilePickListErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		max  int
	}{
		{"out of range", "9", 5},
		{"zero pick", "0", 5},
		{"unbalanced parens", "(1,2", 5},
		{"bad multiplier", "0x1", 5},
		{"spurious tilde", "~1~2", 5},
		{"trailing garbage", "1q", 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CompilePickList(tc.expr, tc.max, TabbyXAYB, false); err == nil {
				t.Errorf("CompilePickList(%q): expected error, got none", tc.expr)
			}
		})
	}
}

func TestCompilePickListTabbyRejectedInThreadingMode(t *testing.T) {
	if _, err := CompilePickList("AB", 5, TabbyXAYB, true); err == nil {
		t.Error("expected error for tabby run in treadle-the-threading mode")
	}
	if _, err := CompilePickList("~1-2", 5, TabbyXAYB, true); err == nil {
		t.Error("expected error for tabby range in treadle-the-threading mode")
	}
}

func TestParseTabbyPattern(t *testing.T) {
	tests := []struct {
		in   string
		want TabbyPattern
	}{
		{"xayb", TabbyXAYB},
		{"AXBY", TabbyAXBY},
		{"XbYa", TabbyXBYA},
		{"bxay", TabbyBXAY},
	}
	for _, tc := range tests {
		got, err := ParseTabbyPattern(tc.in)
		if err != nil {
			t.Fatalf("ParseTabbyPattern(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseTabbyPattern(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseTabbyPattern("bogus"); err == nil {
		t.Error("expected error for unknown tabby pattern")
	}
}
