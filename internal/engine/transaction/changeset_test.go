package transaction

import (
	"testing"

	"github.com/dshills/keystorm/internal/engine/rope"
)

func TestApplyLength(t *testing.T) {
	r := rope.FromString("abcde")
	b := NewBuilder(5)
	b.Delete(1)
	b.Retain(2)
	b.Insert("XY")
	b.Retain(2)
	cs := b.Build()

	out, err := cs.Apply(r)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := out.String(), "bcXYde"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got, want := cs.LenAfter(), len([]rune("bcXYde")); got != want {
		t.Fatalf("LenAfter = %d want %d", got, want)
	}
}

func TestInvertRoundTrips(t *testing.T) {
	r := rope.FromString("hello world")
	b := NewBuilder(int(r.LenChars()))
	b.Retain(6)
	b.Delete(5)
	b.Insert("there")
	cs := b.Build()

	out, err := cs.Apply(r)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	inv := cs.Invert(r)
	back, err := inv.Apply(out)
	if err != nil {
		t.Fatalf("invert apply: %v", err)
	}
	if back.String() != r.String() {
		t.Fatalf("invert round trip: got %q want %q", back.String(), r.String())
	}
}

func TestComposeMatchesSequentialApply(t *testing.T) {
	r := rope.FromString("abcdef")

	b1 := NewBuilder(int(r.LenChars()))
	b1.Retain(2)
	b1.Insert("XY")
	b1.Retain(4)
	cs1 := b1.Build()

	mid, err := cs1.Apply(r)
	if err != nil {
		t.Fatalf("apply 1: %v", err)
	}

	b2 := NewBuilder(int(mid.LenChars()))
	b2.Delete(1)
	b2.Retain(int(mid.LenChars()) - 1)
	cs2 := b2.Build()

	end, err := cs2.Apply(mid)
	if err != nil {
		t.Fatalf("apply 2: %v", err)
	}

	composed, err := cs1.Compose(cs2)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	composedOut, err := composed.Apply(r)
	if err != nil {
		t.Fatalf("apply composed: %v", err)
	}
	if composedOut.String() != end.String() {
		t.Fatalf("compose mismatch: got %q want %q", composedOut.String(), end.String())
	}
}

func TestMapPosInsertReplace(t *testing.T) {
	// Scenario S4: rope "abcde"; delete [0,1) then insert "XY" at post-delete
	// offset 2. Anchor 1 -> 0 (Before), head 3 -> 2 then +2 (After) -> 4.
	b := NewBuilder(5)
	b.Delete(1)
	b.Retain(2)
	b.Insert("XY")
	b.Retain(2)
	cs := b.Build()

	if got := cs.MapPos(1, Before); got != 0 {
		t.Fatalf("anchor map: got %d want 0", got)
	}
	if got := cs.MapPos(3, After); got != 4 {
		t.Fatalf("head map: got %d want 4", got)
	}
}
