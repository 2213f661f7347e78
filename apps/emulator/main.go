// Command emulator serves the remote document store and identity provider over HTTP.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/campuscopilot/core"
	logsvc "github.com/trezcool/campuscopilot/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "EMULATOR : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	cli := commandLine{conf: conf, logger: logger}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		logger.Wait()
		os.Exit(1)
	}
}
