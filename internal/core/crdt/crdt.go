package crdt

// Document is a mergeable replicated document.
//
// Merge applies an opaque byte delta. The operation must be
// commutative, associative, and idempotent: applying the same set of
// deltas in any order, any number of times, converges to the same
// observable state.
//
// Patch applies a field-to-value mapping as last-writer-wins per
// field, inside one atomic step: a concurrent Snapshot observes either
// all fields of a patch or none. Patch is deliberately not commutative
// across conflicting concurrent writes from different origins; the
// physically later apply wins.
type Document interface {
	// Merge applies a delta produced by another replica's EncodeState
	// or by a client-side instance of the same algorithm.
	Merge(delta []byte) error

	// Patch atomically upserts each field, last-writer-wins per field.
	Patch(fields map[string]any) error

	// EncodeState produces a full-state encoding sufficient for a
	// fresh replica to reconstruct equivalent state by merging it in.
	EncodeState() ([]byte, error)

	// Snapshot returns a plain field-to-value view for diagnostics
	// and JSON consumers.
	Snapshot() map[string]any

	// Empty reports whether the document holds no state and can be
	// disposed of with its room.
	Empty() bool
}

// Factory creates an empty document. The origin identifies this
// replica (the instance id) and is used for deterministic tie-breaks
// between concurrent writes with equal timestamps.
type Factory func(origin string) Document
