package chainkernel

import (
	"github.com/rawblock/rainbow-engine/internal/charset"
	"github.com/rawblock/rainbow-engine/internal/reduction"
)

// Worker owns the per-goroutine scratch plaintext buffer used by Step
// and Walk. Never share a Worker across goroutines — the batch executor
// allocates one per worker.
type Worker struct {
	scratch [charset.MaxLength]byte
}

// NewWorker returns a Worker with a zeroed scratch buffer.
func NewWorker() *Worker { return &Worker{} }

// Step advances idx by one column: step(idx, col, table_id) =
// R_{col+1}(H(P(idx)), col, table_id).
func (w *Worker) Step(p *Params, idx uint64, col uint64) uint64 {
	n, err := p.Charset.NToPlaintextInto(w.scratch[:], idx)
	if err != nil {
		// Params are validated before any chain touches the kernel;
		// an out-of-range index here means caller state is corrupt.
		panic(err)
	}
	digest := p.Hash.Digest(w.scratch[:n])
	return reduction.Reduce(digest, col, p.TableID, p.N())
}

// Walk iterates Step across columns [fromCol, toCol), returning the
// resulting index. walk(start, 0, t) is a chain's endpoint.
func (w *Worker) Walk(p *Params, start uint64, fromCol, toCol uint64) uint64 {
	idx := start
	for col := fromCol; col < toCol; col++ {
		idx = w.Step(p, idx, col)
	}
	return idx
}
