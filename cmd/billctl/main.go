package main

import (
	"os"

	cliruntime "github.com/tomasbasham/cli-runtime"

	"billtrack/internal/cmd"
	"billtrack/pkg/logger"
)

func main() {
	command := cmd.NewRootCommand()
	code := cliruntime.Run(command)
	logger.Sync()
	if code != 0 {
		os.Exit(code)
	}
}
