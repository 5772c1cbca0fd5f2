package executor

import (
	"context"
	"runtime"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"golang.org/x/sync/errgroup"
)

// CPUMaxBatch is the advisory batch size the reference CPU executor
// reports; the pipeline is free to submit smaller slices, tiling across
// them to cover a full round.
const CPUMaxBatch = 1 << 20

// CPU is the reference batch executor: a chunked parallel loop over the
// batch using one scratch plaintext buffer per worker, built on
// golang.org/x/sync/errgroup so the first worker error cancels the rest
// and propagates to the caller.
type CPU struct {
	Workers int // 0 means runtime.NumCPU()
}

func (c *CPU) numWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c *CPU) Capabilities() Capabilities {
	return Capabilities{MaxBatch: CPUMaxBatch, DeviceKind: "cpu"}
}

// Execute extends every chain's End in place over [fromCol, toCol).
// Extension order within the batch is unspecified.
func (c *CPU) Execute(ctx context.Context, batch []chainkernel.Chain, fromCol, toCol uint64, params *chainkernel.Params) error {
	if len(batch) == 0 {
		return nil
	}

	numWorkers := c.numWorkers()
	if numWorkers > len(batch) {
		numWorkers = len(batch)
	}
	chunkSize := (len(batch) + numWorkers - 1) / numWorkers

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(batch) {
			end = len(batch)
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			w := chainkernel.NewWorker()
			for j := start; j < end; j++ {
				if j%4096 == 0 {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
				}
				batch[j].End = w.Walk(params, batch[j].End, fromCol, toCol)
			}
			return nil
		})
	}
	return g.Wait()
}
