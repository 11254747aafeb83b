// Package gateway terminates client connections for DocMesh.
//
// It decodes inbound frames in two wire encodings (a JSON envelope
// and a compact binary frame), dispatches messages by kind, applies
// updates to the document store, broadcasts within the local
// instance, and republishes updates on the replication bus. Decode
// failures are never fatal to a connection, and per-message errors
// never affect unrelated rooms or connections.
package gateway
