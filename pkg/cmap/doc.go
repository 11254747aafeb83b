// Package cmap provides a generic sharded concurrent map.
//
// Keys are distributed across shards with hash/maphash, and each
// shard holds its own RWMutex, keeping contention low when many
// goroutines touch different keys. DocMesh uses it for the per-room
// document table, where Upsert gives the create-if-absent path a
// single atomic step.
package cmap
