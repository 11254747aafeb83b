// Package replication fans document updates out across instances.
//
// Instances never talk to each other directly; the only state they
// share is the opaque update bytes carried over a per-room
// publish/subscribe channel. The package provides the Bus contract,
// a Redis-backed implementation for multi-instance deployments, and
// an in-process exchange for single-instance use and tests.
//
// Delivery is at-least-once and unordered; subscribers must tolerate
// duplicates and their own echoes (every publish is also delivered
// back to the publishing instance's subscription).
package replication
