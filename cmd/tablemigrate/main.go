// Command tablemigrate copies rows between relational databases table by
// table, driven by a mapping file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// register all backends with the storage factory.
	_ "tablemigrate/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	g := newGlobal(os.Stdout, os.Stderr, os.Getenv)
	app := newApp(g)

	err := app.ExecuteContext(ctx)
	g.close()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tablemigrate: %v\n", err)
		os.Exit(1)
	}
}
