package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
)

// run blocks until a shutdown signal arrives or the fx app terminates on its
// own (e.g. the HTTP server dying triggers Shutdowner).
func run(ctx context.Context, app *fx.App) {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "familysite payments failed to start: %v\n", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "familysite payments failed to stop cleanly: %v\n", err)
		os.Exit(1)
	}
}
