package pipeline

import (
	"context"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
	"golang.org/x/sync/errgroup"
)

// Table pairs one table's parameters with its generated chains, the
// unit multi-table generation and the store package exchange.
type Table struct {
	Params *tableparams.Params
	Chains []chainkernel.Chain
}

// GenerateTables runs k independent tables that differ only in
// table_id, which perturbs the reduction via the mixer. concurrency
// bounds how many tables generate at once; concurrency <= 0 means
// sequential. Their outputs are disjoint storage artifacts — this
// function does not write anything, callers persist each Table
// independently via the store package.
func GenerateTables(ctx context.Context, configs []Config, concurrency int) ([]Table, error) {
	results := make([]Table, len(configs))

	if concurrency <= 1 {
		for i, cfg := range configs {
			chains, err := Generate(ctx, cfg)
			if err != nil {
				return nil, err
			}
			results[i] = Table{Params: cfg.Params, Chains: chains}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)
	for i, cfg := range configs {
		i, cfg := i, cfg
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			chains, err := Generate(gctx, cfg)
			if err != nil {
				return err
			}
			results[i] = Table{Params: cfg.Params, Chains: chains}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
