// Command seed inserts the default vehicle categories that are missing. Running it twice is harmless.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"sulytrack/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeout := context.WithTimeout(ctx, time.Minute)
	defer timeout()

	container := app.MustBuildContainer(ctx)
	if err := app.Seed(container); err != nil {
		log.Fatalf("seed: %v", err)
	}
}
