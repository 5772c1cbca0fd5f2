// Package charset implements the bijection between 64-bit indices and
// plaintext bytes over a chosen alphabet up to a maximum length.
// Ordering is length-major then lexicographic within length, matching
// the reduction family's expectation that the same ordering is used on
// both sides of the chain kernel.
package charset

import (
	"math/bits"

	"github.com/rawblock/rainbow-engine/internal/errs"
)

// MaxLength is the largest plaintext length this engine supports. Fixed
// so that cumulative counts and the reduction's mod-N arithmetic stay
// inside uint64 without special-casing overflow in the hot loop.
const MaxLength = 32

// Charset precomputes the cumulative offsets C[l] = sum_{j<l} |A|^j for
// l = 1..L+1 so that n_to_plaintext and plaintext_to_n are O(L).
type Charset struct {
	alphabet   []byte
	index      [256]int16 // byte b -> its digit, -1 if not in alphabet
	maxLen     uint8
	cumulative []uint64 // cumulative[l] = C[l], l = 0..maxLen+1
}

// New builds a Charset over alphabet (unique bytes) with plaintexts of
// length 1..maxLen. Returns InvalidParameter if the alphabet is empty,
// contains duplicates, or maxLen exceeds MaxLength, and
// SearchSpaceOverflow if the resulting N would exceed 2^64.
func New(alphabet []byte, maxLen uint8) (*Charset, error) {
	if len(alphabet) == 0 {
		return nil, errs.New(errs.InvalidParameter, "charset: alphabet must not be empty")
	}
	if maxLen == 0 {
		return nil, errs.New(errs.InvalidParameter, "charset: max length must be >= 1")
	}
	if maxLen > MaxLength {
		return nil, errs.New(errs.InvalidParameter, "charset: max length exceeds limit")
	}

	var idx [256]int16
	for i := range idx {
		idx[i] = -1
	}
	for i, b := range alphabet {
		if idx[b] != -1 {
			return nil, errs.New(errs.InvalidParameter, "charset: alphabet contains duplicate byte")
		}
		idx[b] = int16(i)
	}

	cumulative := make([]uint64, int(maxLen)+2)
	cumulative[0] = 0
	cumulative[1] = 0
	base := uint64(len(alphabet))
	power := uint64(1)
	for l := 2; l <= int(maxLen)+1; l++ {
		// cumulative[l] = cumulative[l-1] + |A|^(l-1), the count of
		// plaintexts of length exactly l-1.
		hi, lo := bits.Mul64(power, base)
		if hi != 0 {
			return nil, errs.ErrSearchSpaceOverflow
		}
		power = lo
		sum, carry := bits.Add64(cumulative[l-1], power, 0)
		if carry != 0 {
			return nil, errs.ErrSearchSpaceOverflow
		}
		cumulative[l] = sum
	}

	return &Charset{
		alphabet:   append([]byte(nil), alphabet...),
		index:      idx,
		maxLen:     maxLen,
		cumulative: cumulative,
	}, nil
}

// Alphabet returns the ordered alphabet this charset was built with.
func (c *Charset) Alphabet() []byte { return c.alphabet }

// MaxLen returns the configured maximum plaintext length L.
func (c *Charset) MaxLen() uint8 { return c.maxLen }

// SearchSpaceSize returns N = C[L+1], the total number of indices.
func (c *Charset) SearchSpaceSize() uint64 { return c.cumulative[c.maxLen+1] }

// NToPlaintext maps an index i in [0, N) to its plaintext bytes,
// most-significant digit first.
func (c *Charset) NToPlaintext(i uint64) ([]byte, error) {
	buf := make([]byte, c.maxLen)
	n, err := c.NToPlaintextInto(buf, i)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// NToPlaintextInto writes the plaintext for index i into buf (which must
// have capacity MaxLen) and returns the number of bytes written. This is
// the allocation-free entry point used by the chain kernel's per-worker
// scratch buffer.
func (c *Charset) NToPlaintextInto(buf []byte, i uint64) (int, error) {
	if i >= c.SearchSpaceSize() {
		return 0, errs.New(errs.InvalidParameter, "charset: index out of range")
	}
	length := 0
	for l := 1; l <= int(c.maxLen); l++ {
		if i < c.cumulative[l+1] {
			length = l
			break
		}
	}
	r := i - c.cumulative[length]
	base := uint64(len(c.alphabet))
	for pos := length - 1; pos >= 0; pos-- {
		digit := r % base
		r /= base
		buf[pos] = c.alphabet[digit]
	}
	return length, nil
}

// PlaintextToN is the inverse of NToPlaintext; fails with
// InvalidParameter if a byte is outside the alphabet or the length
// exceeds L.
func (c *Charset) PlaintextToN(p []byte) (uint64, error) {
	length := len(p)
	if length == 0 || length > int(c.maxLen) {
		return 0, errs.New(errs.InvalidParameter, "charset: plaintext length out of range")
	}
	base := uint64(len(c.alphabet))
	var r uint64
	for _, b := range p {
		d := c.index[b]
		if d == -1 {
			return 0, errs.New(errs.InvalidParameter, "charset: byte outside alphabet")
		}
		r = r*base + uint64(d)
	}
	return c.cumulative[length] + r, nil
}
