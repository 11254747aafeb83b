package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook releases one subsystem. It must respect the context deadline.
type Hook func(context.Context) error

// Handler runs registered hooks when a termination signal arrives.
type Handler struct {
	timeout time.Duration

	mu       sync.Mutex
	stack    []Hook
	finished chan struct{}
}

// NewHandler creates a handler. timeout bounds the total time all
// hooks together may take before the context expires under them.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout:  timeout,
		finished: make(chan struct{}),
	}
}

// OnShutdown pushes a hook onto the shutdown stack. Hooks run in
// reverse registration order.
func (h *Handler) OnShutdown(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = append(h.stack, hook)
}

// Wait blocks until SIGINT or SIGTERM, then unwinds the hook stack.
// Every hook runs even when an earlier one fails; the first failure is
// returned.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	signal.Stop(sigCh)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err := h.unwind(ctx)
	close(h.finished)
	return err
}

// unwind runs the stack top-down under the shared deadline.
func (h *Handler) unwind(ctx context.Context) error {
	h.mu.Lock()
	stack := make([]Hook, len(h.stack))
	copy(stack, h.stack)
	h.mu.Unlock()

	var firstErr error
	for i := len(stack) - 1; i >= 0; i-- {
		if err := stack[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Done returns a channel that closes once the hook stack has fully
// unwound.
func (h *Handler) Done() <-chan struct{} {
	return h.finished
}
