package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/dbgpmap/internal/cli"
	"github.com/vburojevic/dbgpmap/internal/config"
)

func main() {
	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values become flag defaults; CLI flags override them
	ctx := kong.Parse(&c,
		kong.Name("dbgpmap"),
		kong.Description("DBGp path mapping proxy: relays debugger sessions between an engine and an IDE,\nrewriting file paths in both directions.\n\nWith no command, 'run' starts the relay."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		cli.KongVars(cfg),
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
