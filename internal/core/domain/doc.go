// Package domain defines the core domain models for DocMesh.
//
// It contains the wire message envelope with its per-kind payload
// shapes, the room and client membership records, and the structured
// error taxonomy shared by all server components.
package domain
