package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/campuscopilot/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	logger core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  serve [-memory] [-addr ADDR] - serve the remote backend")
	fmt.Println("  migrate COMMAND [ARGS...]    - run database migrations (up, down, status, ...)")
	fmt.Println("  seed                         - migrate the database and add the demo accounts")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	serveCmd := flag.NewFlagSet("serve", flag.ContinueOnError)
	serveMemory := serveCmd.Bool("memory", false, "Keep everything in memory instead of the configured database.")
	serveAddr := serveCmd.String("addr", "", "Listen address. Defaults to the configured one.")

	switch args[1] {
	case "serve":
		if err := serveCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *serveAddr != "" {
			cli.conf.Server.Addr = *serveAddr
		}
		return cli.serve(ctx, *serveMemory)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "seed":
		b, err := cli.openBackend(ctx, false)
		if err != nil {
			return err
		}
		return b.close()
	default:
		cli.printUsage()
		return errHelp
	}
}
