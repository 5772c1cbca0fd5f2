package store

import (
	"encoding/binary"
	"os"
	"sort"

	"github.com/rawblock/rainbow-engine/internal/chainkernel"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
)

// Write serializes a generated table to path. chains must already be
// sorted by endpoint and deduplicated, the contract internal/pipeline
// guarantees. Startpoints are stored dense (one u64 per chain, in
// endpoint order) so a full-table scan can reconstruct the start/end
// pairs; endpoints are Rice-coded deltas, and a sparse sampling index
// records the decode bit-offset every SampleStride entries so a lookup
// never decodes more than SampleStride deltas.
func Write(path string, p *tableparams.Params, chains []chainkernel.Chain) error {
	if !sort.SliceIsSorted(chains, func(i, j int) bool { return chains[i].End < chains[j].End }) {
		sort.Slice(chains, func(i, j int) bool { return chains[i].End < chains[j].End })
	}

	endpoints := make([]uint64, len(chains))
	for i, c := range chains {
		endpoints[i] = c.End
	}

	n := p.Charset.SearchSpaceSize()
	k := RiceK(n, uint64(len(chains)))
	packed, bitOffsets := EncodeDeltas(endpoints, k)

	stride := SampleStride
	if stride == 0 {
		stride = 1
	}
	var sampleCount int
	for i := 0; i < len(chains); i += int(stride) {
		sampleCount++
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeHeader(f, p, uint64(len(chains)), k); err != nil {
		return err
	}

	// Startpoints, dense, endpoint order.
	startBuf := make([]byte, 8*len(chains))
	for i, c := range chains {
		binary.LittleEndian.PutUint64(startBuf[i*8:], c.Start)
	}
	if _, err := f.Write(startBuf); err != nil {
		return err
	}

	// Sampling index: (endpoint, bit_offset) pairs every stride entries.
	// bit_offset_j points just past sample j's own delta, i.e. where
	// decoding entry j+1 begins, so a lookup that lands exactly on a
	// sampled endpoint never has to decode at all.
	totalBits := uint64(len(packed)) * 8
	sampleBuf := make([]byte, 0, sampleEntrySize*sampleCount)
	for i := 0; i < len(chains); i += int(stride) {
		afterBit := totalBits
		if i+1 < len(bitOffsets) {
			afterBit = bitOffsets[i+1]
		}
		var entry [sampleEntrySize]byte
		binary.LittleEndian.PutUint64(entry[0:8], endpoints[i])
		binary.LittleEndian.PutUint64(entry[8:16], afterBit)
		sampleBuf = append(sampleBuf, entry[:]...)
	}
	var sampleCountBuf [8]byte
	binary.LittleEndian.PutUint64(sampleCountBuf[:], uint64(sampleCount))
	if _, err := f.Write(sampleCountBuf[:]); err != nil {
		return err
	}
	if _, err := f.Write(sampleBuf); err != nil {
		return err
	}

	// Rice-coded endpoint deltas, byte-padded to 8 bytes.
	var packedLen [8]byte
	binary.LittleEndian.PutUint64(packedLen[:], uint64(len(packed)))
	if _, err := f.Write(packedLen[:]); err != nil {
		return err
	}
	if _, err := f.Write(packed); err != nil {
		return err
	}

	return f.Sync()
}

func writeHeader(f *os.File, p *tableparams.Params, storedChains uint64, k uint8) error {
	buf := make([]byte, 0, fixedHeaderSize+len(p.Charset.Alphabet()))
	buf = append(buf, Magic[:]...)

	var tmp2 [2]byte
	binary.LittleEndian.PutUint16(tmp2[:], Version)
	buf = append(buf, tmp2[:]...)

	buf = append(buf, byte(p.Hash))
	buf = append(buf, byte(len(p.Charset.Alphabet())))
	buf = append(buf, p.Charset.MaxLen())
	buf = append(buf, 0) // reserved

	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], p.TableID)
	buf = append(buf, tmp4[:]...)

	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], p.M0)
	buf = append(buf, tmp8[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], p.ChainLen)
	buf = append(buf, tmp8[:]...)
	binary.LittleEndian.PutUint64(tmp8[:], storedChains)
	buf = append(buf, tmp8[:]...)

	buf = append(buf, k)

	var tmp4b [4]byte
	binary.LittleEndian.PutUint32(tmp4b[:], SampleStride)
	buf = append(buf, tmp4b[:]...)

	buf = append(buf, p.Charset.Alphabet()...)

	_, err := f.Write(buf)
	return err
}
