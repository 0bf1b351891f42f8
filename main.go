package main

import (
	"os"

	"github.com/jlammi/troutpop-go/cmd"
	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("error loading configuration", "error", err)
	}

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		// cobra already printed the error.
		os.Exit(1)
	}
}
