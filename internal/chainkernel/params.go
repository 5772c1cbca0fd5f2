package chainkernel

import (
	"github.com/rawblock/rainbow-engine/internal/charset"
	"github.com/rawblock/rainbow-engine/internal/hashes"
)

// Params are the immutable per-table parameters the kernel needs:
// hash kind, charset, table id, and chain length. m_0 lives on the
// caller's table-parameter type (internal/tableparams). ChainLen is
// carried for callers; Step and Walk do not read it and do not check
// column ranges against it.
type Params struct {
	Hash    hashes.Kind
	Charset *charset.Charset
	TableID uint32
	ChainLen uint64
}

// N returns the search space size backing this table's charset.
func (p *Params) N() uint64 { return p.Charset.SearchSpaceSize() }
