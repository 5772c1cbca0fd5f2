// Package executor defines the chain-batch executor contract: advance
// every chain's endpoint across a column range, in parallel, with no
// ordering dependency between chains. The core never calls device APIs
// directly — GPU back-ends are interchangeable implementations of this
// interface, CPU is the reference.
package executor

import (
	"context"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
)

// Capabilities describes what an executor can do, advisory to the
// pipeline for partition sizing.
type Capabilities struct {
	MaxBatch   int
	DeviceKind string
}

// Executor advances every chain in batch from fromCol to toCol,
// preserving startpoints. Implementations MUST NOT assume any ordering
// between chains in the batch.
type Executor interface {
	Capabilities() Capabilities
	Execute(ctx context.Context, batch []chainkernel.Chain, fromCol, toCol uint64, params *chainkernel.Params) error
}
