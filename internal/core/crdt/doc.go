// Package crdt defines the replicated document primitive for DocMesh.
//
// The synchronization core never inspects document internals; it only
// requires the algebraic contract of the Document interface. Merge
// must be commutative, associative, and idempotent so that documents
// converge under at-least-once, unordered cross-instance delivery.
// The default implementation is a last-writer-wins element map whose
// deltas use a compact little-endian binary encoding.
//
// Any implementation satisfying the contract can be plugged in via
// Factory; the core has no dependency on the concrete algorithm.
package crdt
