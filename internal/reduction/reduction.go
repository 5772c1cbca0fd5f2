// Package reduction implements the column-indexed reduction family
// R_t(d, col, table_id) -> index. A cheap, branch-free reduction keeps
// the chain kernel hot loop uniform across CPU and GPU executors.
package reduction

import "github.com/rawblock/rainbow-engine/internal/hashes"

// PrimeShift is the fixed mixing constant, chosen so generated tables
// stay portable across implementations; never change it without also
// changing the on-disk format version, since it is not itself stored.
const PrimeShift uint64 = 0x9E3779B97F4A7C15

// Mixer computes col + table_id * PrimeShift, wrapping on overflow as
// intended (the mod-N step below is the only other place wraparound is
// deliberate).
func Mixer(col uint64, tableID uint32) uint64 {
	return col + uint64(tableID)*PrimeShift
}

// Reduce maps a digest to an index in [0, n) for the given column and
// table. n is the charset's search space size.
func Reduce(digest []byte, col uint64, tableID uint32, n uint64) uint64 {
	return (hashes.First8LE(digest) ^ Mixer(col, tableID)) % n
}
