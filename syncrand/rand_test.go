package syncrand

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a, b := New(42), New(42)
	for i := range 100 {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
	if a.Draws() != 100 {
		t.Errorf("Draws() = %d, want 100", a.Draws())
	}
}

func TestDifferentSeeds(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for range 16 {
		if a.Next() == b.Next() {
			same++
		}
	}
	if same == 16 {
		t.Error("seeds 1 and 2 produced identical sequences")
	}
}

func TestClone(t *testing.T) {
	a := New(7)
	for range 5 {
		a.Next()
	}
	c := a.Clone()
	if c.Draws() != a.Draws() {
		t.Fatalf("clone Draws() = %d, want %d", c.Draws(), a.Draws())
	}
	for i := range 10 {
		if x, y := a.Next(), c.Next(); x != y {
			t.Fatalf("draw %d after clone: %d != %d", i, x, y)
		}
	}
}
