// Package command provides CLI command definitions for docmesh-cli.
//
// Commands:
//
//   - status: server health and diagnostics over HTTP
//   - room watch: join a room over WebSocket and stream messages
//   - room set: apply document field updates to a room
package command
