// Package pipeline implements rainbow table generation: startpoint
// selection, filtration rounds, merging, and finalization.
package pipeline

import (
	"context"
	"log"
	"sort"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/errs"
	"github.com/rawblock/rainbow-engine/internal/executor"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
)

// maxExecutorRetries bounds how many times a transient executor failure
// halves the batch size before the pipeline gives up on that executor
// and falls back to the CPU reference.
const maxExecutorRetries = 4

// Progress describes one round's outcome, emitted on Config.Progress if
// non-nil. The pipeline never blocks on a slow or absent consumer — the
// channel must be buffered or drained promptly by the caller.
type Progress struct {
	TableID         uint32
	Round           int
	FromCol         uint64
	ToCol           uint64
	LiveChains      int
	SurvivingChains int
}

// Config configures a single table's generation run.
type Config struct {
	Params            *tableparams.Params
	FiltrationColumns []uint64 // f_1 < f_2 < ... < f_k < t; nil uses DefaultFiltrationColumns
	Executor          executor.Executor
	Progress          chan<- Progress // optional, non-blocking best-effort send
}

// Generate runs the full pipeline for one table and returns the sorted,
// deduped chains: [(start_i, end_i)] sorted by endpoint, endpoints
// unique within the table.
func Generate(ctx context.Context, cfg Config) ([]chainkernel.Chain, error) {
	p := cfg.Params
	filtration := cfg.FiltrationColumns
	if filtration == nil {
		filtration = DefaultFiltrationColumns(p.ChainLen, defaultFiltrationCount(p.ChainLen))
	}

	boundaries := append([]uint64{0}, filtration...)
	boundaries = append(boundaries, p.ChainLen)

	starts := Startpoints(p.TableID, p.M0)
	chains := make([]chainkernel.Chain, len(starts))
	for i, s := range starts {
		chains[i] = chainkernel.Chain{Start: s, End: s}
	}

	kernelParams := &chainkernel.Params{
		Hash:     p.Hash,
		Charset:  p.Charset,
		TableID:  p.TableID,
		ChainLen: p.ChainLen,
	}

	exec := cfg.Executor
	if exec == nil {
		exec = &executor.CPU{}
	}
	cpuFallback := &executor.CPU{}

	for round := 0; round < len(boundaries)-1; round++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fromCol, toCol := boundaries[round], boundaries[round+1]
		if err := extendWithRetry(ctx, exec, cpuFallback, chains, fromCol, toCol, kernelParams); err != nil {
			return nil, err
		}

		chains = dedupByEndpoint(chains)

		if cfg.Progress != nil {
			select {
			case cfg.Progress <- Progress{
				TableID: p.TableID, Round: round, FromCol: fromCol, ToCol: toCol,
				LiveChains: len(starts), SurvivingChains: len(chains),
			}:
			default:
			}
		}
	}

	sort.Slice(chains, func(i, j int) bool { return chains[i].End < chains[j].End })
	return chains, nil
}

// extendWithRetry extends the full chain slice over [fromCol,toCol) in
// MaxBatch-sized tiles. A transient failure on a tile halves the batch
// size and retries up to maxExecutorRetries times before that tile falls
// back permanently to the CPU executor.
func extendWithRetry(ctx context.Context, exec, cpuFallback executor.Executor, chains []chainkernel.Chain, fromCol, toCol uint64, params *chainkernel.Params) error {
	batchSize := exec.Capabilities().MaxBatch
	if batchSize <= 0 {
		batchSize = len(chains)
	}
	if batchSize <= 0 {
		return nil
	}

	for offset := 0; offset < len(chains); {
		end := offset + batchSize
		if end > len(chains) {
			end = len(chains)
		}
		slice := chains[offset:end]

		if err := executeTileWithRetry(ctx, exec, cpuFallback, slice, fromCol, toCol, params); err != nil {
			return err
		}
		offset = end
	}
	return nil
}

func executeTileWithRetry(ctx context.Context, exec, cpuFallback executor.Executor, tile []chainkernel.Chain, fromCol, toCol uint64, params *chainkernel.Params) error {
	attempt := 0
	size := len(tile)
	for {
		sub := tile[:size]
		err := exec.Execute(ctx, sub, fromCol, toCol, params)
		if err == nil {
			if size < len(tile) {
				// Halved batch succeeded; cover the remainder the same way.
				if rerr := executeTileWithRetry(ctx, exec, cpuFallback, tile[size:], fromCol, toCol, params); rerr != nil {
					return rerr
				}
			}
			return nil
		}

		var ee *errs.Error
		if e, ok := err.(*errs.Error); ok {
			ee = e
		}
		if ee == nil || ee.Kind != errs.ExecutorTransient {
			log.Printf("[pipeline] executor fatal error, falling back to CPU: %v", err)
			return cpuFallback.Execute(ctx, tile, fromCol, toCol, params)
		}

		attempt++
		if attempt > maxExecutorRetries {
			log.Printf("[pipeline] executor exhausted retries, falling back to CPU: %v", err)
			return cpuFallback.Execute(ctx, tile, fromCol, toCol, params)
		}
		size = size / 2
		if size == 0 {
			log.Printf("[pipeline] executor failed at batch size 1, falling back to CPU: %v", err)
			return cpuFallback.Execute(ctx, tile, fromCol, toCol, params)
		}
		log.Printf("[pipeline] executor transient failure, halving batch to %d and retrying: %v", size, err)
	}
}

// dedupByEndpoint sorts by endpoint and keeps one representative per
// endpoint: the lowest startpoint wins, deterministically.
func dedupByEndpoint(chains []chainkernel.Chain) []chainkernel.Chain {
	sort.Slice(chains, func(i, j int) bool {
		if chains[i].End != chains[j].End {
			return chains[i].End < chains[j].End
		}
		return chains[i].Start < chains[j].Start
	})

	out := chains[:0]
	var lastEnd uint64
	haveLast := false
	for _, c := range chains {
		if haveLast && c.End == lastEnd {
			continue // merge: a later chain with a higher startpoint loses
		}
		out = append(out, c)
		lastEnd = c.End
		haveLast = true
	}
	return out
}

// defaultFiltrationCount picks a modest number of filtration rounds
// scaled to chain length when the caller doesn't specify one: filtration
// columns are most valuable concentrated early in the chain.
func defaultFiltrationCount(chainLen uint64) int {
	switch {
	case chainLen < 100:
		return 0
	case chainLen < 10_000:
		return 4
	default:
		return 8
	}
}
