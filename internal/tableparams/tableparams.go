// Package tableparams validates and holds the immutable per-table
// configuration: m_0, t, L, A, H, table_id.
package tableparams

import (
	"github.com/rawblock/rainbow-engine/internal/charset"
	"github.com/rawblock/rainbow-engine/internal/errs"
	"github.com/rawblock/rainbow-engine/internal/hashes"
)

// Params is immutable once constructed by New.
type Params struct {
	Hash     hashes.Kind
	Charset  *charset.Charset
	M0       uint64
	ChainLen uint64
	TableID  uint32
}

// New validates and constructs table parameters. Returns
// InvalidParameter for an empty charset, L > charset.MaxLength,
// t == 0, or m_0 == 0, and SearchSpaceOverflow if the alphabet/length
// combination would make N exceed 2^64 (surfaced by charset.New).
func New(hash hashes.Kind, alphabet []byte, maxLen uint8, m0, chainLen uint64, tableID uint32) (*Params, error) {
	if chainLen == 0 {
		return nil, errs.New(errs.InvalidParameter, "tableparams: chain length t must be >= 1")
	}
	if m0 == 0 {
		return nil, errs.New(errs.InvalidParameter, "tableparams: startpoint count m_0 must be >= 1")
	}
	cs, err := charset.New(alphabet, maxLen)
	if err != nil {
		return nil, err
	}
	if m0 > cs.SearchSpaceSize() {
		return nil, errs.New(errs.InvalidParameter, "tableparams: m_0 exceeds search space size")
	}
	return &Params{Hash: hash, Charset: cs, M0: m0, ChainLen: chainLen, TableID: tableID}, nil
}

// MaximalityFactor returns alpha = m_0 * t / N, the ratio used
// to relate startpoint count to coverage.
func (p *Params) MaximalityFactor() float64 {
	n := p.Charset.SearchSpaceSize()
	return float64(p.M0) * float64(p.ChainLen) / float64(n)
}

// M0ForMaximalityFactor inverts MaximalityFactor: given a target alpha
// and t, returns the m_0 that achieves it (rounded down), clamped to the
// search space size.
func M0ForMaximalityFactor(alpha float64, chainLen uint64, n uint64) uint64 {
	if alpha <= 0 {
		return 0
	}
	if alpha > 1 {
		alpha = 1
	}
	m0 := uint64(alpha * float64(n) / float64(chainLen))
	if m0 > n {
		m0 = n
	}
	if m0 == 0 {
		m0 = 1
	}
	return m0
}
