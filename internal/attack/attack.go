// Package attack implements chain-table inversion: given a target
// digest and a set of tables, it finds the plaintext that hashes to it
// by walking forward from every column and probing each table's
// endpoint store.
package attack

import (
	"context"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/errs"
	"github.com/rawblock/rainbow-engine/internal/hashes"
	"github.com/rawblock/rainbow-engine/internal/reduction"
	"github.com/rawblock/rainbow-engine/internal/store"
)

// Table bundles an open endpoint store with the chain-kernel parameters
// needed to walk and reconstruct its chains.
type Table struct {
	Store    *store.Table
	TableID  uint32
	ChainLen uint64
}

// Open loads a table file and derives the attack-time Table view from
// its header.
func Open(path string) (*Table, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return &Table{Store: s, TableID: s.Header.TableID, ChainLen: s.Header.ChainLen}, nil
}

// Close releases the underlying memory-mapped file.
func (t *Table) Close() error { return t.Store.Close() }

func (t *Table) kernelParams(hash hashes.Kind) *chainkernel.Params {
	return &chainkernel.Params{
		Hash:     hash,
		Charset:  t.Store.Charset,
		TableID:  t.TableID,
		ChainLen: t.ChainLen,
	}
}

// Progress reports one column's outcome across all tables, emitted on
// Config.Progress if non-nil.
type Progress struct {
	Column  uint64
	Tables  int
	Checked int
}

// Config configures a single-digest attack run.
type Config struct {
	Hash     hashes.Kind
	Digest   []byte
	Tables   []*Table
	Progress chan<- Progress
}

// Result is the outcome of an attack run: either a recovered plaintext,
// or a clean not-found outcome reported via Found == false (not an
// error).
type Result struct {
	Plaintext []byte
	Found     bool
}

// Run scans columns t-1 down to 0, querying every table at each column.
// Returns errs.CorruptedTable if a table's endpoint store misbehaves, and
// a zero-value, Found==false Result if every column and table is
// exhausted without a verified match.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if len(cfg.Tables) == 0 {
		return Result{}, errs.New(errs.InvalidParameter, "attack: no tables provided")
	}

	maxChainLen := uint64(0)
	for _, tbl := range cfg.Tables {
		if tbl.ChainLen > maxChainLen {
			maxChainLen = tbl.ChainLen
		}
	}

	worker := chainkernel.NewWorker()

	for col := int64(maxChainLen) - 1; col >= 0; col-- {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		checked := 0
		for _, tbl := range cfg.Tables {
			c := uint64(col)
			if c >= tbl.ChainLen {
				continue
			}
			params := tbl.kernelParams(cfg.Hash)
			startIdx := reduction.Reduce(cfg.Digest, c, tbl.TableID, params.N())
			endpoint := worker.Walk(params, startIdx, c+1, tbl.ChainLen)

			start, ok, err := tbl.Store.Lookup(endpoint)
			checked++
			if err != nil {
				return Result{}, err
			}
			if !ok {
				continue
			}

			plaintext, hit, err := reconstruct(worker, params, start, c, cfg.Hash, cfg.Digest)
			if err != nil {
				return Result{}, err
			}
			if hit {
				return Result{Plaintext: plaintext, Found: true}, nil
			}
			// False alarm: a different plaintext produced the same
			// endpoint. Keep scanning this column's remaining tables.
		}

		if cfg.Progress != nil {
			select {
			case cfg.Progress <- Progress{Column: uint64(col), Tables: len(cfg.Tables), Checked: checked}:
			default:
			}
		}
	}

	return Result{Found: false}, nil
}

// reconstruct walks the chain from its startpoint up to column c and
// checks whether the plaintext at that column hashes to target.
func reconstruct(w *chainkernel.Worker, params *chainkernel.Params, start uint64, c uint64, hash hashes.Kind, target []byte) ([]byte, bool, error) {
	idx := w.Walk(params, start, 0, c)
	plaintext, err := params.Charset.NToPlaintext(idx)
	if err != nil {
		return nil, false, errs.Wrap(errs.CorruptedTable, "attack: index out of range reconstructing chain", err)
	}
	digest := hash.Digest(plaintext)
	if digestsEqual(digest, target) {
		return plaintext, true, nil
	}
	return nil, false, nil
}

func digestsEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
