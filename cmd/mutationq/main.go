// Command mutationq inspects and drains a mutation queue from the shell.
//
// The backend is chosen with --driver (sqlite, mysql, postgres, nats) and --dsn, or with the
// MUTATIONQ_* environment variables. drain and relay publish entries to RabbitMQ; sweep-blobs
// removes upload payloads no pending entry references.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/velmie/mutationq/cmd/mutationq/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(config.Load())
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
