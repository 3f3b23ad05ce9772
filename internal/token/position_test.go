package token

import "testing"

func TestPositionString(t *testing.T) {
	p := Position{Filename: "main.wpl", Line: 3, Column: 7}
	got := p.String()
	want := "main.wpl:3:7"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPositionIsValid(t *testing.T) {
	if (Position{}).IsValid() {
		t.Error("zero-value Position should be invalid")
	}
	if !(Position{Line: 1}).IsValid() {
		t.Error("Position with Line > 0 should be valid")
	}
}
