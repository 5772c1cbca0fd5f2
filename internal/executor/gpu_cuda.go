//go:build cuda

package executor

/*
#cgo LDFLAGS: -L${SRCDIR} -lchainkernel -L/usr/local/cuda/lib64 -lcudart
#include "bindings.h"
*/
import "C"

import (
	"context"
	"log"
	"unsafe"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/errs"
)

// GPUMaxBatch bounds a single device-side launch; the pipeline tiles
// larger rounds into slices this size, all slices collectively covering
// the same column range.
const GPUMaxBatch = 1 << 22

// GPU offloads chain extension to an Nvidia device: one thread per
// chain, columns [fromCol, toCol) advanced entirely on-device per
// launch. Host-side slices are copied into flat C arrays, a single
// kernel launch advances them, and results are copied back.
type GPU struct {
	TableHashKind uint8
}

func (g GPU) Capabilities() Capabilities {
	return Capabilities{MaxBatch: GPUMaxBatch, DeviceKind: "cuda"}
}

func (g GPU) Execute(ctx context.Context, batch []chainkernel.Chain, fromCol, toCol uint64, params *chainkernel.Params) error {
	if len(batch) == 0 {
		return nil
	}

	starts := make([]C.ulonglong, len(batch))
	ends := make([]C.ulonglong, len(batch))
	for i, ch := range batch {
		starts[i] = C.ulonglong(ch.Start)
		ends[i] = C.ulonglong(ch.End)
	}

	log.Printf("[CUDA] Offloading %d chains (columns %d..%d) to GPU VRAM for parallel extension...", len(batch), fromCol, toCol)

	ret := C.ExtendChainsCUDA(
		(*C.ulonglong)(unsafe.Pointer(&ends[0])), C.int(len(batch)),
		C.ulonglong(fromCol), C.ulonglong(toCol),
		C.uchar(g.TableHashKind), C.uint(params.TableID), C.ulonglong(params.N()),
	)
	if ret != 0 {
		return errs.New(errs.ExecutorTransient, "executor: CUDA kernel launch failed, device may be out of memory")
	}

	for i := range batch {
		batch[i].End = uint64(ends[i])
	}
	return nil
}
