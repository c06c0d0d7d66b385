// Command aula is the terminal client of Aula Virtual.
package main

import (
	"log"
	"os"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	logsvc "github.com/trezcool/aulavirtual/services/logger"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stderr, "AULA : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	cli := newCommandLine(options{
		BaseURL: conf.API.BaseURL,
		Timeout: conf.API.Timeout,
		Store:   auth.NewFileStore(conf.TokenFile),
		Locale:  conf.Locale,
		In:      os.Stdin,
		Out:     os.Stdout,
		Logger:  logger,
	})
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("error: %s\n", err)
		}
		os.Exit(1)
	}
}
