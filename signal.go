package joytransfer

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSigHandler calls cancel on SIGINT or SIGTERM.
func WithSigHandler(ctx context.Context, cancel func()) context.Context {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigs)

		select {
		case s := <-sigs:
			GetLogger().Debugf("got %s, cancelling", s)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
