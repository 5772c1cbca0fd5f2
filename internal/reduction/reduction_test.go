package reduction

import "testing"

func TestReduceIsWithinRange(t *testing.T) {
	digest := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	const n = 14
	for col := uint64(0); col < 200; col++ {
		if r := Reduce(digest, col, 3, n); r >= n {
			t.Fatalf("Reduce(col=%d) = %d, out of range [0,%d)", col, r, n)
		}
	}
}

func TestMixerDependsOnColumnAndTable(t *testing.T) {
	if Mixer(1, 0) == Mixer(2, 0) {
		t.Error("mixer should differ across columns")
	}
	if Mixer(1, 0) == Mixer(1, 1) {
		t.Error("mixer should differ across table ids")
	}
}

func TestReduceDeterministic(t *testing.T) {
	digest := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x11, 0x22}
	a := Reduce(digest, 5, 0, 1_000_000)
	b := Reduce(digest, 5, 0, 1_000_000)
	if a != b {
		t.Errorf("Reduce is not deterministic: %d != %d", a, b)
	}
}
