package attack

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rawblock/rainbow-engine/internal/charset"
	"github.com/rawblock/rainbow-engine/internal/hashes"
	"github.com/rawblock/rainbow-engine/internal/pipeline"
	"github.com/rawblock/rainbow-engine/internal/store"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
)

// buildCoveringTable generates a table with one startpoint per index in
// [0, n) and writes it to a temp file, a high-coverage attack fixture.
// Merged chains are dropped during generation, so coverage of the space
// is high but not guaranteed to be complete.
func buildCoveringTable(t *testing.T, hash hashes.Kind, alphabet string, maxLen uint8, chainLen uint64, tableID uint32) *Table {
	t.Helper()
	cs, err := charset.New([]byte(alphabet), maxLen)
	if err != nil {
		t.Fatalf("charset.New: %v", err)
	}
	p, err := tableparams.New(hash, []byte(alphabet), maxLen, cs.SearchSpaceSize(), chainLen, tableID)
	if err != nil {
		t.Fatalf("tableparams.New: %v", err)
	}

	chains, err := pipeline.Generate(context.Background(), pipeline.Config{Params: p})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "covering.rtc")
	if err := store.Write(path, p, chains); err != nil {
		t.Fatalf("Write: %v", err)
	}
	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tbl
}

func TestAttackFindsPlaintext(t *testing.T) {
	tbl := buildCoveringTable(t, hashes.MD5, "0123456789", 4, 40, 0)
	defer tbl.Close()

	target := hashes.MD5.Digest([]byte("0042"))

	res, err := Run(context.Background(), Config{
		Hash:   hashes.MD5,
		Digest: target,
		Tables: []*Table{tbl},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Found {
		t.Fatal("expected a hit")
	}
	if string(res.Plaintext) != "0042" {
		t.Errorf("Plaintext = %q, want %q", res.Plaintext, "0042")
	}
}

func TestAttackMissOutsideSearchSpace(t *testing.T) {
	tbl := buildCoveringTable(t, hashes.MD5, "0123456789", 4, 40, 0)
	defer tbl.Close()

	target := hashes.MD5.Digest([]byte("nonnumeric"))

	res, err := Run(context.Background(), Config{
		Hash:   hashes.MD5,
		Digest: target,
		Tables: []*Table{tbl},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Found {
		t.Fatalf("expected a miss, got plaintext %q", res.Plaintext)
	}
}

func TestAttackRejectsEmptyTableSet(t *testing.T) {
	_, err := Run(context.Background(), Config{Hash: hashes.MD5, Digest: []byte{1, 2, 3}})
	if err == nil {
		t.Fatal("expected error for empty table set")
	}
}

func TestAttackScansAcrossMultipleTables(t *testing.T) {
	tbl1 := buildCoveringTable(t, hashes.MD5, "0123456789", 3, 20, 0)
	defer tbl1.Close()
	tbl2 := buildCoveringTable(t, hashes.MD5, "0123456789", 3, 20, 1)
	defer tbl2.Close()

	target := hashes.MD5.Digest([]byte("007"))
	res, err := Run(context.Background(), Config{
		Hash:   hashes.MD5,
		Digest: target,
		Tables: []*Table{tbl1, tbl2},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Found || string(res.Plaintext) != "007" {
		t.Fatalf("Run = %+v, want found \"007\"", res)
	}
}
