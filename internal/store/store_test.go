package store

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/hashes"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
)

func TestRiceRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	endpoints := make([]uint64, 2000)
	var cur uint64
	for i := range endpoints {
		cur += uint64(r.Intn(5000))
		endpoints[i] = cur
	}

	k := RiceK(endpoints[len(endpoints)-1]+1, uint64(len(endpoints)))
	packed, offsets := EncodeDeltas(endpoints, k)
	decoded := DecodeDeltas(packed, offsets[0], k, 0, len(endpoints))

	for i := range endpoints {
		if decoded[i] != endpoints[i] {
			t.Fatalf("entry %d: got %d want %d", i, decoded[i], endpoints[i])
		}
	}
}

func TestRiceRoundTripFromMidStream(t *testing.T) {
	endpoints := []uint64{10, 25, 40, 1000, 1001, 5000}
	k := RiceK(6000, uint64(len(endpoints)))
	packed, offsets := EncodeDeltas(endpoints, k)

	decoded := DecodeDeltas(packed, offsets[3], k, endpoints[2], len(endpoints)-3)
	for i, want := range endpoints[3:] {
		if decoded[i] != want {
			t.Fatalf("entry %d: got %d want %d", i, decoded[i], want)
		}
	}
}

func buildTestTable(t *testing.T) (*tableparams.Params, []chainkernel.Chain) {
	t.Helper()
	p, err := tableparams.New(hashes.MD5, []byte("0123456789abcdef"), 4, 500, 64, 7)
	if err != nil {
		t.Fatalf("tableparams.New: %v", err)
	}
	starts := make([]uint64, p.M0)
	for i := range starts {
		starts[i] = uint64(i) * 3
	}
	kp := &chainkernel.Params{Hash: p.Hash, Charset: p.Charset, TableID: p.TableID, ChainLen: p.ChainLen}
	w := chainkernel.NewWorker()
	// Write expects endpoints deduplicated; merged chains keep the lowest
	// startpoint, as the generation pipeline does.
	seen := make(map[uint64]bool, len(starts))
	chains := make([]chainkernel.Chain, 0, len(starts))
	for _, s := range starts {
		end := w.Walk(kp, s, 0, p.ChainLen)
		if seen[end] {
			continue
		}
		seen[end] = true
		chains = append(chains, chainkernel.Chain{Start: s, End: end})
	}
	return p, chains
}

func TestWriteOpenLookupRoundTrip(t *testing.T) {
	p, chains := buildTestTable(t)
	path := filepath.Join(t.TempDir(), "table.rtc")

	if err := Write(path, p, chains); err != nil {
		t.Fatalf("Write: %v", err)
	}

	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tbl.Close()

	if tbl.Len() != len(chains) {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), len(chains))
	}
	if tbl.Header.TableID != p.TableID {
		t.Fatalf("TableID = %d, want %d", tbl.Header.TableID, p.TableID)
	}

	for _, c := range chains {
		start, ok, err := tbl.Lookup(c.End)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", c.End, err)
		}
		if !ok {
			t.Fatalf("Lookup(%d): not found", c.End)
		}
		if start != c.Start {
			t.Fatalf("Lookup(%d) = %d, want %d", c.End, start, c.Start)
		}
	}
}

func TestLookupMissReturnsNotOK(t *testing.T) {
	p, chains := buildTestTable(t)
	path := filepath.Join(t.TempDir(), "table.rtc")
	if err := Write(path, p, chains); err != nil {
		t.Fatalf("Write: %v", err)
	}
	tbl, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tbl.Close()

	n := p.Charset.SearchSpaceSize()
	for offset := uint64(0); offset < n; offset++ {
		found := false
		for _, c := range chains {
			if c.End == offset {
				found = true
				break
			}
		}
		if !found {
			_, ok, err := tbl.Lookup(offset)
			if err != nil {
				t.Fatalf("Lookup(%d): %v", offset, err)
			}
			if ok {
				t.Fatalf("Lookup(%d): expected miss", offset)
			}
			return
		}
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.rtc")
	if err := os.WriteFile(path, make([]byte, fixedHeaderSize+16), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected error opening file with zeroed header")
	}
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	p, chains := buildTestTable(t)
	path := filepath.Join(t.TempDir(), "trunc.rtc")
	if err := Write(path, p, chains); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	truncPath := filepath.Join(t.TempDir(), "trunc2.rtc")
	if err := os.WriteFile(truncPath, data[:len(data)/2], 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(truncPath); err == nil {
		t.Fatal("expected error opening truncated file")
	}
}
