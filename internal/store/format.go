package store

// Magic identifies a compressed endpoint store file. Readers MUST
// reject files that don't start with it.
var Magic = [4]byte{'C', 'G', 'P', 'K'}

// Version is the only file format version this engine emits or accepts.
// Readers MUST reject any other version.
const Version uint16 = 1

// SampleStride is the default interval S between sampling-index entries,
// trading lookup latency against index size: a query costs a binary
// search over the samples plus at most S decoded Rice codewords.
const SampleStride uint32 = 1024

// Header is the fixed-layout table file header:
//
//	magic "CGPK", version u16, hash_kind u8, charset_len u8,
//	L u8, k u8 (reserved), table_id u32,
//	m_0 u64, t u64, m (stored chains) u64,
//	rice_K u8, sample_stride u32, charset_bytes [charset_len]
type Header struct {
	Version      uint16
	HashKind     uint8
	CharsetLen   uint8
	MaxLen       uint8
	Reserved     uint8
	TableID      uint32
	M0           uint64
	ChainLen     uint64
	StoredChains uint64
	RiceK        uint8
	SampleStride uint32
	CharsetBytes []byte
}

// fixedHeaderSize is the byte length of the header up to and including
// sample_stride, before the variable-length charset_bytes.
const fixedHeaderSize = 4 /*magic*/ + 2 /*version*/ + 1 /*hash_kind*/ + 1 /*charset_len*/ +
	1 /*L*/ + 1 /*k reserved*/ + 4 /*table_id*/ +
	8 /*m0*/ + 8 /*t*/ + 8 /*m*/ +
	1 /*rice_K*/ + 4 /*sample_stride*/

// sampleEntrySize is the byte size of one (endpoint, bit_offset) pair in
// the sampling index.
const sampleEntrySize = 8 + 8
