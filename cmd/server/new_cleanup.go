package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner abstracts telemetry so tests can verify cleanup behavior
// without constructing real exporters.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup constructs the shutdown hook: close the store first, then flush telemetry
// so the store's final log lines are exported.
func newCleanup(store io.Closer, telemetry shutdowner) func() {
	return func() {
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", slog.String("error", err.Error()))
			}
		}

		if telemetry != nil {
			if err := telemetry.Shutdown(context.Background()); err != nil {
				slog.Error("failed to shut down telemetry", slog.String("error", err.Error()))
			}
		}
	}
}
