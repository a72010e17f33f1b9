// Command docsync syncs documents from a document store into a search index
// and serves queries against it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsync/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetWiring(&wiring{})

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
