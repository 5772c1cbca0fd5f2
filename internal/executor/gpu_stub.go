//go:build !cuda

package executor

import (
	"context"
	"log"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/errs"
)

// GPU is the CUDA chain-batch executor. This build (without the 'cuda'
// tag) is a safe fallback for machines without an Nvidia toolchain — it
// reports ExecutorFatal so the generation pipeline's automatic
// CPU-fallback path runs unconditionally in this build.
type GPU struct{}

func (GPU) Capabilities() Capabilities {
	return Capabilities{MaxBatch: 0, DeviceKind: "cuda-unavailable"}
}

func (GPU) Execute(ctx context.Context, batch []chainkernel.Chain, fromCol, toCol uint64, params *chainkernel.Params) error {
	log.Println("[WARNING] GPU chain-batch executor requested, but engine was built without the 'cuda' tag. Falling back to the CPU executor.")
	return errs.New(errs.ExecutorFatal, "executor: engine was compiled without CUDA support")
}
