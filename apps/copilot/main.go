// Command copilot is the command-line client of the campus cache and its remote backend.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/campuscopilot/core"
	logsvc "github.com/trezcool/campuscopilot/services/logger"
	boltkv "github.com/trezcool/campuscopilot/storage/kv/bolt"
)

func main() {
	os.Exit(start())
}

func start() int {
	conf := core.NewConfig()
	logger := logsvc.New(log.New(os.Stderr, "COPILOT : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	ctx := context.Background()

	kv, err := boltkv.Open(conf.Cache.Path)
	if err != nil {
		logger.Error("opening local cache", err)
		return 1
	}

	a, err := openApp(ctx, conf, logger, kv)
	if err != nil {
		_ = kv.Close()
		logger.Error("starting", err)
		fmt.Fprintln(os.Stderr, core.Localize(err, ""))
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("closing", err)
		}
	}()

	cli := newCommandLine(a, os.Stdout)
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			logger.Debug("command failed", err)
			fmt.Fprintln(os.Stderr, cli.describe(ctx, err))
		}
		return 1
	}
	return 0
}
