package store

import (
	"bytes"
	"encoding/binary"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
	"github.com/rawblock/rainbow-engine/internal/charset"
	"github.com/rawblock/rainbow-engine/internal/errs"
	"github.com/rawblock/rainbow-engine/internal/hashes"
)

// sample is one entry of the sparse lookup index: the endpoint stored at
// a chain index that is a multiple of the file's sample stride, and the
// bit offset into the Rice stream where decoding the NEXT chain's delta
// begins (i.e. just past this sample's own codeword).
type sample struct {
	endpoint  uint64
	bitOffset uint64
}

// Table is a memory-mapped, read-only view of one generated table.
// Endpoint lookups decode at most SampleStride Rice codewords, never the
// whole table.
type Table struct {
	Header  Header
	Charset *charset.Charset

	mm        mmap.MMap
	file      *os.File
	startOff  int
	sampleOff int
	samples   []sample
	packedOff int
	packed    []byte
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.CorruptedTable, "store: open table file", err)
	}
	return f, nil
}

// Open memory-maps path and validates its header. Returns CorruptedTable
// for a bad magic, unsupported version, or truncated file, and
// InvalidParameter for an unrecognized hash kind.
func Open(path string) (*Table, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.CorruptedTable, "store: mmap failed", err)
	}

	t, err := parse(m)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}
	t.file = f
	return t, nil
}

func parse(m mmap.MMap) (*Table, error) {
	if len(m) < fixedHeaderSize {
		return nil, errs.New(errs.CorruptedTable, "store: file shorter than header")
	}
	if !bytes.Equal(m[0:4], Magic[:]) {
		return nil, errs.New(errs.CorruptedTable, "store: bad magic")
	}
	off := 4

	version := binary.LittleEndian.Uint16(m[off:])
	off += 2
	if version != Version {
		return nil, errs.New(errs.CorruptedTable, "store: unsupported file version")
	}

	hashKind := m[off]
	off++
	if _, err := hashes.ParseKind(hashKind); err != nil {
		return nil, err
	}

	charsetLen := m[off]
	off++
	maxLen := m[off]
	off++
	off++ // reserved

	tableID := binary.LittleEndian.Uint32(m[off:])
	off += 4
	m0 := binary.LittleEndian.Uint64(m[off:])
	off += 8
	chainLen := binary.LittleEndian.Uint64(m[off:])
	off += 8
	storedChains := binary.LittleEndian.Uint64(m[off:])
	off += 8
	riceK := m[off]
	off++
	sampleStride := binary.LittleEndian.Uint32(m[off:])
	off += 4

	if len(m) < off+int(charsetLen) {
		return nil, errs.New(errs.CorruptedTable, "store: truncated charset bytes")
	}
	alphabet := append([]byte(nil), m[off:off+int(charsetLen)]...)
	off += int(charsetLen)

	hdr := Header{
		Version:      version,
		HashKind:     hashKind,
		CharsetLen:   charsetLen,
		MaxLen:       maxLen,
		TableID:      tableID,
		M0:           m0,
		ChainLen:     chainLen,
		StoredChains: storedChains,
		RiceK:        riceK,
		SampleStride: sampleStride,
		CharsetBytes: alphabet,
	}

	cs, err := charset.New(alphabet, maxLen)
	if err != nil {
		return nil, errs.Wrap(errs.CorruptedTable, "store: invalid charset in header", err)
	}

	startOff := off
	startBytes := 8 * int(storedChains)
	if len(m) < startOff+startBytes {
		return nil, errs.New(errs.CorruptedTable, "store: truncated startpoints section")
	}
	off = startOff + startBytes

	if len(m) < off+8 {
		return nil, errs.New(errs.CorruptedTable, "store: truncated sample count")
	}
	sampleCount := binary.LittleEndian.Uint64(m[off:])
	off += 8

	sampleOff := off
	sampleBytes := sampleEntrySize * int(sampleCount)
	if len(m) < sampleOff+sampleBytes {
		return nil, errs.New(errs.CorruptedTable, "store: truncated sample index")
	}
	samples := make([]sample, sampleCount)
	for i := 0; i < int(sampleCount); i++ {
		base := sampleOff + i*sampleEntrySize
		samples[i] = sample{
			endpoint:  binary.LittleEndian.Uint64(m[base:]),
			bitOffset: binary.LittleEndian.Uint64(m[base+8:]),
		}
	}
	off = sampleOff + sampleBytes

	if len(m) < off+8 {
		return nil, errs.New(errs.CorruptedTable, "store: truncated packed length")
	}
	packedLen := binary.LittleEndian.Uint64(m[off:])
	off += 8
	packedOff := off
	if len(m) < packedOff+int(packedLen) {
		return nil, errs.New(errs.CorruptedTable, "store: truncated endpoint stream")
	}

	return &Table{
		Header:    hdr,
		Charset:   cs,
		mm:        m,
		startOff:  startOff,
		sampleOff: sampleOff,
		samples:   samples,
		packedOff: packedOff,
		packed:    m[packedOff : packedOff+int(packedLen)],
	}, nil
}

// Close unmaps the file and releases the descriptor.
func (t *Table) Close() error {
	if err := t.mm.Unmap(); err != nil {
		return err
	}
	return t.file.Close()
}

// Len returns the number of chains stored in the table.
func (t *Table) Len() int { return int(t.Header.StoredChains) }

// startAt returns the startpoint stored at chain index i.
func (t *Table) startAt(i int) uint64 {
	base := t.startOff + i*8
	return binary.LittleEndian.Uint64(t.mm[base:])
}

// Lookup finds the startpoint for an exact endpoint match, returning
// ok=false if the endpoint isn't present in this table. It binary
// searches the sparse sample index to find the nearest preceding sample,
// then decodes forward at most SampleStride Rice codewords.
func (t *Table) Lookup(endpoint uint64) (start uint64, ok bool, err error) {
	if len(t.samples) == 0 {
		return 0, false, nil
	}

	si := sort.Search(len(t.samples), func(i int) bool { return t.samples[i].endpoint > endpoint }) - 1
	if si < 0 {
		si = 0
	}
	sampleIdx := si
	chainIdx := sampleIdx * int(t.Header.SampleStride)
	if chainIdx >= t.Len() {
		return 0, false, nil
	}

	// The sampled entry's own endpoint is known without decoding.
	if t.samples[sampleIdx].endpoint == endpoint {
		return t.startAt(chainIdx), true, nil
	}

	remaining := t.Len() - chainIdx - 1
	if remaining <= 0 {
		return 0, false, nil
	}
	span := int(t.Header.SampleStride)
	if span > remaining {
		span = remaining
	}

	deltas := DecodeDeltas(t.packed, t.samples[sampleIdx].bitOffset, t.Header.RiceK, t.samples[sampleIdx].endpoint, span)
	for i, e := range deltas {
		if e == endpoint {
			return t.startAt(chainIdx + 1 + i), true, nil
		}
		if e > endpoint {
			return 0, false, nil
		}
	}
	return 0, false, nil
}
