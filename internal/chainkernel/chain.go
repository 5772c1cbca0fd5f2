// Package chainkernel holds the chain value type and the one-step /
// many-step extension primitives. Both operations are pure functions of
// the inputs and the table parameters; a Worker holds the only mutable
// state (a reusable plaintext scratch buffer).
package chainkernel

// Chain is a plain 16-byte value: a startpoint and the endpoint it has
// been extended to so far. Avoid boxing — sort and dedup in the
// generation pipeline operate on a contiguous []Chain.
type Chain struct {
	Start uint64
	End   uint64
}
