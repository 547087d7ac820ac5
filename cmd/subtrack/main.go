package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/subtrack/internal/cli"
	"github.com/dmitrijs2005/subtrack/internal/config"
	"github.com/dmitrijs2005/subtrack/internal/flagx"
)

// configFlags are handled by the config package and stripped before
// subcommand dispatch.
var configFlags = []string{"-c", "-config", "-d", "-f", "-p", "-t", "-w"}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx, flagx.StripArgs(os.Args[1:], configFlags)); err != nil {
		log.Fatalf("%v", err)
	}
}
