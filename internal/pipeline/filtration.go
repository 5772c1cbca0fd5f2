package pipeline

import "math"

// DefaultFiltrationColumns returns k filtration columns f_1 < f_2 < ... <
// f_k < t using the default schedule f_i = t * (1 - (1 -
// 1/i)^2), concentrated early because early collisions are most
// frequent. Columns that collide after rounding, or land on 0 or t, are
// dropped to keep the schedule strictly increasing and interior to
// (0, t).
func DefaultFiltrationColumns(chainLen uint64, k int) []uint64 {
	if k <= 0 || chainLen < 2 {
		return nil
	}
	t := float64(chainLen)
	cols := make([]uint64, 0, k)
	var last uint64
	for i := 1; i <= k; i++ {
		frac := 1 - math.Pow(1-1/float64(i), 2)
		f := uint64(math.Round(t * frac))
		if f <= last {
			f = last + 1
		}
		if f >= chainLen {
			break
		}
		cols = append(cols, f)
		last = f
	}
	return cols
}
