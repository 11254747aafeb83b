// Package shutdown coordinates graceful shutdown for DocMesh.
//
// Subsystems register hooks as they start; on SIGINT or SIGTERM the
// hooks run in reverse registration order, so the last subsystem to
// come up is the first to go down. All hooks share one deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return bus.Disconnect() })
//	h.OnShutdown(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	err := h.Wait() // blocks until a signal, then unwinds the stack
package shutdown
