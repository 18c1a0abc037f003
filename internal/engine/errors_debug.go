//go:build sporkfish_debug

package engine

// panicOnInvariantViolation is true in debug builds (built with
// -tags sporkfish_debug): an invariant violation is a bug the developer
// wants to see a stack trace for immediately, not a recoverable error a
// driver should quietly log and move past.
const panicOnInvariantViolation = true
