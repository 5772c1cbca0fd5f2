package chainkernel

import (
	"testing"

	"github.com/rawblock/rainbow-engine/internal/charset"
	"github.com/rawblock/rainbow-engine/internal/hashes"
)

func testParams(t *testing.T) *Params {
	t.Helper()
	cs, err := charset.New([]byte("0123456789"), 5)
	if err != nil {
		t.Fatalf("charset.New: %v", err)
	}
	return &Params{Hash: hashes.MD5, Charset: cs, TableID: 0, ChainLen: 100}
}

func TestWalkIsDeterministic(t *testing.T) {
	p := testParams(t)
	w1, w2 := NewWorker(), NewWorker()

	e1 := w1.Walk(p, 42, 0, 100)
	e2 := w2.Walk(p, 42, 0, 100)
	if e1 != e2 {
		t.Errorf("Walk is not deterministic across workers: %d != %d", e1, e2)
	}
}

func TestWalkComposesOfSteps(t *testing.T) {
	p := testParams(t)
	w := NewWorker()

	viaWalk := w.Walk(p, 7, 0, 10)

	idx := uint64(7)
	for col := uint64(0); col < 10; col++ {
		idx = w.Step(p, idx, col)
	}
	if idx != viaWalk {
		t.Errorf("Walk(0,10) = %d, composed Steps = %d", viaWalk, idx)
	}
}

func TestWalkPartialRangesCompose(t *testing.T) {
	p := testParams(t)
	w := NewWorker()

	full := w.Walk(p, 100, 0, 50)
	mid := w.Walk(p, 100, 0, 20)
	rest := w.Walk(p, mid, 20, 50)
	if full != rest {
		t.Errorf("Walk(0,50) = %d, Walk(0,20)+Walk(20,50) = %d", full, rest)
	}
}
