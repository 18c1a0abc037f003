//go:build !sporkfish_debug

package engine

// panicOnInvariantViolation is false in ordinary builds: BestMove logs the
// ErrInternalInvariantViolation (spec §7) and returns the static-evaluation
// fallback move, so the driver still gets a legal move instead of the whole
// process crashing.
const panicOnInvariantViolation = false
