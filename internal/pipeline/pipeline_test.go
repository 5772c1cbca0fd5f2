package pipeline

import (
	"context"
	"testing"

	"github.com/rawblock/rainbow-engine/internal/hashes"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
)

func smallParams(t *testing.T, m0, chainLen uint64, tableID uint32) *tableparams.Params {
	t.Helper()
	p, err := tableparams.New(hashes.MD5, []byte("0123456789"), 4, m0, chainLen, tableID)
	if err != nil {
		t.Fatalf("tableparams.New: %v", err)
	}
	return p
}

func TestStartpointsDeterministic(t *testing.T) {
	a := Startpoints(5, 1000)
	b := Startpoints(5, 1000)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Startpoints not deterministic at %d: %d != %d", i, a[i], b[i])
		}
	}
}

func TestStartpointsIsPermutation(t *testing.T) {
	pts := Startpoints(3, 500)
	seen := make(map[uint64]bool, len(pts))
	for _, p := range pts {
		if p >= 500 {
			t.Fatalf("startpoint %d out of range", p)
		}
		if seen[p] {
			t.Fatalf("duplicate startpoint %d", p)
		}
		seen[p] = true
	}
}

func TestStartpointsDifferByTable(t *testing.T) {
	a := Startpoints(0, 100)
	b := Startpoints(1, 100)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different permutations for different table ids")
	}
}

func TestGenerateProducesUniqueEndpoints(t *testing.T) {
	p := smallParams(t, 500, 200, 0)
	chains, err := Generate(context.Background(), Config{Params: p})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	seen := make(map[uint64]bool, len(chains))
	for _, c := range chains {
		if seen[c.End] {
			t.Fatalf("duplicate endpoint %d in finalized table", c.End)
		}
		seen[c.End] = true
	}
	for i := 1; i < len(chains); i++ {
		if chains[i-1].End > chains[i].End {
			t.Fatal("chains not sorted by endpoint")
		}
	}
}

// Scenario 3 (scaled down for test speed): two independent runs with
// identical parameters produce byte-identical chain sets.
func TestGenerateIsReproducible(t *testing.T) {
	p1 := smallParams(t, 2000, 300, 0)
	p2 := smallParams(t, 2000, 300, 0)

	c1, err := Generate(context.Background(), Config{Params: p1})
	if err != nil {
		t.Fatalf("Generate run 1: %v", err)
	}
	c2, err := Generate(context.Background(), Config{Params: p2})
	if err != nil {
		t.Fatalf("Generate run 2: %v", err)
	}

	if len(c1) != len(c2) {
		t.Fatalf("chain counts differ: %d vs %d", len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("chain %d differs: %+v vs %+v", i, c1[i], c2[i])
		}
	}
}

// Scenario 4: filtration produces the same surviving endpoint set (as a
// set, restricted to the startpoints that survive) as no filtration.
func TestFiltrationCorrectness(t *testing.T) {
	pFiltered := smallParams(t, 3000, 400, 0)
	pPlain := smallParams(t, 3000, 400, 0)

	filtered, err := Generate(context.Background(), Config{
		Params:            pFiltered,
		FiltrationColumns: []uint64{50, 150, 300},
	})
	if err != nil {
		t.Fatalf("Generate filtered: %v", err)
	}
	plain, err := Generate(context.Background(), Config{
		Params:            pPlain,
		FiltrationColumns: []uint64{},
	})
	if err != nil {
		t.Fatalf("Generate plain: %v", err)
	}

	plainByStart := make(map[uint64]uint64, len(plain))
	for _, c := range plain {
		plainByStart[c.Start] = c.End
	}
	for _, c := range filtered {
		if want, ok := plainByStart[c.Start]; ok && want != c.End {
			t.Errorf("startpoint %d: filtered endpoint %d != plain endpoint %d", c.Start, c.End, want)
		}
	}
}

func TestDefaultFiltrationColumnsStrictlyIncreasing(t *testing.T) {
	cols := DefaultFiltrationColumns(10000, 5)
	for i := 1; i < len(cols); i++ {
		if cols[i] <= cols[i-1] {
			t.Fatalf("filtration columns not strictly increasing: %v", cols)
		}
	}
	for _, c := range cols {
		if c == 0 || c >= 10000 {
			t.Fatalf("filtration column %d out of (0,t) range", c)
		}
	}
}

func TestGenerateTablesSequentialAndParallelAgree(t *testing.T) {
	configs := []Config{
		{Params: smallParams(t, 200, 100, 0)},
		{Params: smallParams(t, 200, 100, 1)},
	}
	seq, err := GenerateTables(context.Background(), configs, 0)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}

	configs2 := []Config{
		{Params: smallParams(t, 200, 100, 0)},
		{Params: smallParams(t, 200, 100, 1)},
	}
	par, err := GenerateTables(context.Background(), configs2, 4)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if len(seq) != len(par) {
		t.Fatalf("table count differs")
	}
	for i := range seq {
		if len(seq[i].Chains) != len(par[i].Chains) {
			t.Fatalf("table %d chain count differs", i)
		}
		for j := range seq[i].Chains {
			if seq[i].Chains[j] != par[i].Chains[j] {
				t.Fatalf("table %d chain %d differs", i, j)
			}
		}
	}
}
