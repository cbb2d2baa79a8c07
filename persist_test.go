package main

import "testing"

func TestReadLastPickMissingFileDefaultsToOne(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	got, err := ReadLastPick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("ReadLastPick() with no file = %d, want 1", got)
	}
}

func TestWriteThenReadLastPick(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := WriteLastPick(42); err != nil {
		t.Fatalf("WriteLastPick: unexpected error: %v", err)
	}
	got, err := ReadLastPick()
	if err != nil {
		t.Fatalf("ReadLastPick: unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("ReadLastPick() = %d, want 42", got)
	}
}
