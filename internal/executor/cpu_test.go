package executor

import (
	"context"
	"testing"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/charset"
	"github.com/rawblock/rainbow-engine/internal/hashes"
)

func TestCPUExecuteMatchesSequentialWalk(t *testing.T) {
	cs, err := charset.New([]byte("0123456789"), 4)
	if err != nil {
		t.Fatalf("charset.New: %v", err)
	}
	params := &chainkernel.Params{Hash: hashes.MD5, Charset: cs, TableID: 0, ChainLen: 20}

	batch := make([]chainkernel.Chain, 50)
	for i := range batch {
		batch[i] = chainkernel.Chain{Start: uint64(i * 7 % 5000), End: uint64(i * 7 % 5000)}
	}

	want := make([]uint64, len(batch))
	w := chainkernel.NewWorker()
	for i, ch := range batch {
		want[i] = w.Walk(params, ch.End, 0, 20)
	}

	cpu := &CPU{Workers: 4}
	if err := cpu.Execute(context.Background(), batch, 0, 20, params); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for i, ch := range batch {
		if ch.End != want[i] {
			t.Errorf("chain %d: End = %d, want %d", i, ch.End, want[i])
		}
	}
}

func TestCPUExecuteEmptyBatch(t *testing.T) {
	cpu := &CPU{}
	if err := cpu.Execute(context.Background(), nil, 0, 10, nil); err != nil {
		t.Errorf("Execute on empty batch: %v", err)
	}
}

func TestCPUExecuteRespectsCancellation(t *testing.T) {
	cs, _ := charset.New([]byte("0123456789"), 4)
	params := &chainkernel.Params{Hash: hashes.MD5, Charset: cs, TableID: 0, ChainLen: 1000}
	batch := make([]chainkernel.Chain, 1_000_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cpu := &CPU{Workers: 2}
	err := cpu.Execute(ctx, batch, 0, 1000, params)
	if err == nil {
		t.Error("expected cancellation error")
	}
}

func TestCPUCapabilities(t *testing.T) {
	cpu := &CPU{}
	caps := cpu.Capabilities()
	if caps.DeviceKind != "cpu" {
		t.Errorf("DeviceKind = %q, want cpu", caps.DeviceKind)
	}
	if caps.MaxBatch <= 0 {
		t.Error("MaxBatch should be positive")
	}
}
