// Package docstore owns the per-room replicated documents.
//
// It maps room ids to crdt.Document instances in a sharded concurrent
// map, creating documents lazily on first access and releasing them
// when their room is destroyed. All merge and patch traffic flows
// through this package; it never inspects document internals beyond
// the crdt contract.
package docstore
